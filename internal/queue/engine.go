package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"turnstile/internal/config"
	"turnstile/internal/logging"
)

// SnapshotStore is the persistence contract the engine depends on. Writes
// are best-effort: a failed save is logged and never surfaced to the caller.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context) error
}

// Broadcaster fans a status line out to connected observers. Publish must
// not block on slow consumers.
type Broadcaster interface {
	Publish(text string)
}

// Engine owns the whole queue state and is the only component with business
// logic. Every operation runs under one exclusive lock, so operations are
// atomic with respect to each other.
type Engine struct {
	mu sync.Mutex

	stations []string
	byKey    map[string]*stationQueue

	served        []Ticket
	totalServed   int
	totalWaitTime time.Duration
	announcement  string

	avgServiceTime time.Duration
	maxQueueLength int

	store  SnapshotStore
	hub    Broadcaster
	logger *slog.Logger
}

// NewEngine builds an engine for the configured station set. store and hub
// may be nil; persistence and broadcasting become no-ops.
func NewEngine(cfg *config.Config, store SnapshotStore, hub Broadcaster, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		stations:       append([]string(nil), cfg.Stations.Names...),
		byKey:          make(map[string]*stationQueue, len(cfg.Stations.Names)),
		avgServiceTime: cfg.AverageServiceTime(),
		maxQueueLength: cfg.Queue.MaxQueueLength,
		store:          store,
		hub:            hub,
		logger:         logging.NewComponentLogger(logger, "queue-engine"),
	}
	for _, name := range e.stations {
		e.byKey[stationKey(name)] = newStationQueue(name)
	}
	return e
}

// Restore applies a previously persisted snapshot. Entries for stations that
// are no longer configured are dropped; fields missing from an old payload
// keep their fresh-state defaults.
func (e *Engine) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sq := range e.byKey {
		if waiting, ok := snap.Queues[sq.name]; ok {
			sq.waiting = append([]Ticket(nil), waiting...)
		}
		if current, ok := snap.CurrentServing[sq.name]; ok && current != nil {
			ticket := *current
			sq.current = &ticket
		}
		if last, ok := snap.LastServed[sq.name]; ok && last != nil {
			ticket := *last
			sq.last = &ticket
		}
		if seq, ok := snap.QueueNumbers[sq.name]; ok && seq > 0 {
			sq.nextSeq = seq
		}
	}
	e.served = append([]Ticket(nil), snap.ServedHistory...)
	e.totalServed = snap.TotalServed
	e.totalWaitTime = time.Duration(snap.TotalWaitTime) * time.Minute
	e.announcement = snap.CurrentAnnouncement
}

// Status reports every station's queue in configured order. Pure read: no
// mutation, no persistence, no broadcast.
func (e *Engine) Status() []StationStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]StationStatus, 0, len(e.stations))
	for _, name := range e.stations {
		sq := e.byKey[stationKey(name)]
		status := StationStatus{
			Station:       sq.name,
			Waiting:       make([]string, 0, len(sq.waiting)),
			EstimatedWait: time.Duration(len(sq.waiting)) * e.avgServiceTime,
		}
		if sq.current != nil {
			number := sq.current.Number
			status.Current = &number
		}
		for _, ticket := range sq.waiting {
			status.Waiting = append(status.Waiting, ticket.Number)
		}
		out = append(out, status)
	}
	return out
}

// Enqueue issues a ticket for the station and appends it to the waiting
// list. The number is minted before the capacity check: when the queue is
// full the ticket is dropped but the caller still receives the minted
// number, matching the engine's original observable contract.
func (e *Engine) Enqueue(ctx context.Context, station string) (Ticket, error) {
	e.mu.Lock()
	sq, ok := e.byKey[stationKey(station)]
	if !ok {
		e.mu.Unlock()
		return Ticket{}, fmt.Errorf("enqueue %q: %w", station, ErrUnknownStation)
	}

	ticket := Ticket{
		Number:   sq.mintNumber(),
		Station:  sq.name,
		IssuedAt: time.Now().UTC(),
	}
	accepted := sq.enqueue(ticket, e.maxQueueLength)
	var snap *Snapshot
	if accepted {
		snap = e.snapshotLocked()
	}
	e.mu.Unlock()

	if !accepted {
		e.logger.Warn("queue full, ticket dropped",
			logging.String("station", sq.name),
			logging.String("number", ticket.Number))
		return ticket, nil
	}

	e.persist(ctx, snap)
	return ticket, nil
}

// CallNext moves the waiting head of the station into the serving slot. A
// nil ticket with nil error means nothing was waiting; no state changes.
func (e *Engine) CallNext(ctx context.Context, station string) (*Ticket, error) {
	e.mu.Lock()
	sq, ok := e.byKey[stationKey(station)]
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("call next %q: %w", station, ErrUnknownStation)
	}

	ticket := sq.dequeueNext()
	if ticket == nil {
		e.mu.Unlock()
		return nil, nil
	}

	e.served = append(e.served, *ticket)
	e.totalServed++
	e.totalWaitTime += e.avgServiceTime
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(servingMessage(ticket.Number, sq.name))
	e.persist(ctx, snap)
	return ticket, nil
}

// Recall re-announces the most recently served ticket for the station. The
// waiting list is never touched.
func (e *Engine) Recall(ctx context.Context, station string) (Ticket, error) {
	e.mu.Lock()
	sq, ok := e.byKey[stationKey(station)]
	if !ok {
		e.mu.Unlock()
		return Ticket{}, fmt.Errorf("recall %q: %w", station, ErrUnknownStation)
	}

	ticket := sq.recallLast()
	if ticket == nil {
		e.mu.Unlock()
		return Ticket{}, fmt.Errorf("recall %q: %w", station, ErrNothingToRecall)
	}
	recalled := *ticket
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(servingMessage(recalled.Number, sq.name))
	e.persist(ctx, snap)
	return recalled, nil
}

// Announcement returns the current free-text broadcast message.
func (e *Engine) Announcement() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.announcement
}

// SetAnnouncement overwrites the announcement unconditionally; the empty
// string is allowed.
func (e *Engine) SetAnnouncement(ctx context.Context, text string) {
	e.mu.Lock()
	e.announcement = text
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast("New Announcement: " + text)
	e.persist(ctx, snap)
}

// ResetAll returns every station and the global counters to their initial
// empty state and removes the persisted snapshot. A missing snapshot on the
// next startup reads as fresh state. Reset intentionally does not broadcast.
func (e *Engine) ResetAll(ctx context.Context) {
	e.mu.Lock()
	for _, sq := range e.byKey {
		sq.reset()
	}
	e.served = nil
	e.totalServed = 0
	e.totalWaitTime = 0
	e.announcement = ""
	e.mu.Unlock()

	if e.store == nil {
		return
	}
	if err := e.store.Delete(ctx); err != nil {
		e.logger.Error("delete snapshot failed", logging.Error(err))
	}
}

// ExportWaiting returns a flat ordered listing of every waiting ticket
// across all stations. Currently-serving tickets and history are excluded.
func (e *Engine) ExportWaiting() ([]ExportRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var rows []ExportRow
	for _, name := range e.stations {
		sq := e.byKey[stationKey(name)]
		for _, ticket := range sq.waiting {
			rows = append(rows, ExportRow{Service: sq.name, Number: ticket.Number})
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoDataToExport
	}
	return rows, nil
}

// Summarize reports engine-wide counters for daemon status output.
func (e *Engine) Summarize() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	waiting := 0
	for _, sq := range e.byKey {
		waiting += len(sq.waiting)
	}
	return Summary{
		Stations:      len(e.stations),
		TotalWaiting:  waiting,
		TotalServed:   e.totalServed,
		TotalWaitTime: e.totalWaitTime,
		Announcement:  e.announcement,
	}
}

// Snapshot returns a deep copy of the current engine state in the persisted
// layout.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.snapshotLocked()
}

func (e *Engine) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Queues:              make(map[string][]Ticket, len(e.byKey)),
		CurrentServing:      make(map[string]*Ticket, len(e.byKey)),
		LastServed:          make(map[string]*Ticket, len(e.byKey)),
		QueueNumbers:        make(map[string]int, len(e.byKey)),
		ServedHistory:       append([]Ticket(nil), e.served...),
		TotalServed:         e.totalServed,
		TotalWaitTime:       int(e.totalWaitTime.Minutes()),
		CurrentAnnouncement: e.announcement,
	}
	for _, sq := range e.byKey {
		snap.Queues[sq.name] = append([]Ticket(nil), sq.waiting...)
		if sq.current != nil {
			ticket := *sq.current
			snap.CurrentServing[sq.name] = &ticket
		}
		if sq.last != nil {
			ticket := *sq.last
			snap.LastServed[sq.name] = &ticket
		}
		snap.QueueNumbers[sq.name] = sq.nextSeq
	}
	return snap
}

func (e *Engine) persist(ctx context.Context, snap *Snapshot) {
	if e.store == nil || snap == nil {
		return
	}
	if err := e.store.Save(ctx, *snap); err != nil {
		e.logger.Error("persist snapshot failed", logging.Error(err))
	}
}

func (e *Engine) broadcast(text string) {
	if e.hub == nil {
		return
	}
	e.hub.Publish(text)
}

func servingMessage(number, station string) string {
	return fmt.Sprintf("Now serving %s at %s", number, station)
}

func stationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
