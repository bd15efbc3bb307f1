// Package notifications delivers queue events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. The
// daemon uses it to mirror broadcast lines to phones and wall displays that
// are not connected to the live event stream.
package notifications
