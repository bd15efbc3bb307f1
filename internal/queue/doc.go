// Package queue implements the in-memory queue state engine: per-station
// ticket counters, FIFO waiting lists, serving slots, and the operations
// that mutate them (enqueue, call-next, recall, reset, announcements).
//
// The Engine is the single owner of all queue state and runs every operation
// under one exclusive lock. Persistence and broadcasting are side effects
// performed through narrow interfaces after the in-memory mutation commits;
// both are best-effort and never fail an operation.
//
// Two historical quirks are part of the observable contract and are kept on
// purpose: ticket numbers are minted before the capacity check (a rejected
// enqueue burns a sequence number and the caller still gets the number), and
// a full reset does not broadcast.
package queue
