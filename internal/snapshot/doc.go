// Package snapshot persists the engine state as a single durable record in
// SQLite.
//
// Saves happen after every mutating engine operation and always overwrite
// the previous snapshot (last-write-wins). Loads are lenient: a missing
// record or missing payload fields read as fresh state, so old snapshots
// stay loadable across payload additions.
package snapshot
