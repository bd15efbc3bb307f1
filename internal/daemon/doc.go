// Package daemon coordinates the long-running Turnstile process.
//
// It wires configuration, the queue engine, snapshot persistence, and the
// broadcast hub into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon owns the HTTP API surface and mirrors every
// broadcast line to the optional ntfy push channel.
//
// Keep orchestration logic here: queue semantics live in the queue package
// while the daemon focuses on startup, shutdown, and exposure.
package daemon
