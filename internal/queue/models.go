package queue

import (
	"strconv"
	"time"
	"unicode"
)

// Ticket is one customer's place in line for one station. Tickets are
// immutable once issued; only the slot referencing them changes.
type Ticket struct {
	Number   string    `json:"number"`
	Station  string    `json:"station"`
	IssuedAt time.Time `json:"issuedAt"`
}

// StationStatus is the read-only view of one station's queue.
type StationStatus struct {
	Station       string
	Current       *string
	Waiting       []string
	EstimatedWait time.Duration
}

// ExportRow is one waiting ticket in the flat export listing.
type ExportRow struct {
	Service string `json:"service"`
	Number  string `json:"number"`
}

// Summary aggregates engine-wide counters for daemon status output.
type Summary struct {
	Stations      int
	TotalWaiting  int
	TotalServed   int
	TotalWaitTime time.Duration
	Announcement  string
}

// Snapshot is the full persisted engine state. The field layout is the wire
// contract of the snapshot record; missing fields in an old payload decode to
// zero values and are treated as fresh state on restore.
type Snapshot struct {
	Queues              map[string][]Ticket `json:"queues"`
	CurrentServing      map[string]*Ticket  `json:"currentServing"`
	LastServed          map[string]*Ticket  `json:"lastServed"`
	QueueNumbers        map[string]int      `json:"queueNumbers"`
	ServedHistory       []Ticket            `json:"servedHistory"`
	TotalServed         int                 `json:"totalServed"`
	TotalWaitTime       int                 `json:"totalWaitTime"`
	CurrentAnnouncement string              `json:"currentAnnouncement"`
}

// stationQueue holds the mutable per-station state: the FIFO waiting list,
// the serving slots, and the ticket number sequence.
type stationQueue struct {
	name    string
	initial string
	waiting []Ticket
	current *Ticket
	last    *Ticket
	nextSeq int
}

func newStationQueue(name string) *stationQueue {
	initial := ""
	for _, r := range name {
		initial = string(unicode.ToUpper(r))
		break
	}
	return &stationQueue{name: name, initial: initial}
}

// mintNumber consumes the next sequence number. Callers mint before the
// capacity check, so a rejected enqueue still burns a number; issued numbers
// are monotonic but not guaranteed contiguous.
func (s *stationQueue) mintNumber() string {
	s.nextSeq++
	return s.initial + strconv.Itoa(s.nextSeq)
}

// enqueue appends a ticket to the waiting tail unless the queue is at
// capacity.
func (s *stationQueue) enqueue(ticket Ticket, maxLen int) bool {
	if len(s.waiting) >= maxLen {
		return false
	}
	s.waiting = append(s.waiting, ticket)
	return true
}

// dequeueNext pops the waiting head into the serving slots. Returns nil when
// nothing is waiting.
func (s *stationQueue) dequeueNext() *Ticket {
	if len(s.waiting) == 0 {
		return nil
	}
	ticket := s.waiting[0]
	s.waiting = s.waiting[1:]
	s.current = &ticket
	s.last = &ticket
	return &ticket
}

// recallLast re-assigns the most recently served ticket to the serving slot
// without touching the waiting list. Returns nil when nothing was ever
// served.
func (s *stationQueue) recallLast() *Ticket {
	if s.last == nil {
		return nil
	}
	s.current = s.last
	return s.last
}

// reset returns the station to its initial empty state, including the ticket
// sequence.
func (s *stationQueue) reset() {
	s.waiting = nil
	s.current = nil
	s.last = nil
	s.nextSeq = 0
}
