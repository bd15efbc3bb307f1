// Package config loads, normalizes, and validates Turnstile configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the daemon and CLI need: the station set, queue capacity, service-time
// estimates, directories, and notification settings.
//
// Station names are title-cased during normalization and their first letters
// become ticket prefixes, so validation rejects duplicate initials.
package config
