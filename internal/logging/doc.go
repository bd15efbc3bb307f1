// Package logging builds the slog loggers used across the daemon and CLI.
//
// It supports console and JSON output, multi-destination writers (stdout plus
// a log file under the configured log directory), and shared attribute
// helpers so components log with consistent keys.
package logging
