// Package broadcast fans queue status lines out to connected observers.
//
// The Hub keeps a registry of subscribers plus a bounded ring of recent
// messages. Delivery is best-effort and never blocks the publisher; each
// subscriber sees messages in publish order, and a slow subscriber only
// loses its own messages. Disconnected observers are simply removed, never
// retried.
package broadcast
