package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one broadcast line with its position in the publish order.
type Message struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Text      string    `json:"text"`
}

// Hub fans broadcast messages out to subscribers and keeps a bounded ring of
// recent messages so late joiners and pollers can catch up. Delivery is
// best-effort: a subscriber whose buffer is full misses messages, others are
// unaffected. Per subscriber, delivered messages are always in publish
// order.
type Hub struct {
	mu          sync.Mutex
	cond        *sync.Cond
	capacity    int
	buffer      []Message
	nextSeq     uint64
	subscribers map[string]*Subscriber
}

// Subscriber is one registered observer. Close it to stop delivery.
type Subscriber struct {
	id  string
	ch  chan Message
	hub *Hub
}

// NewHub constructs a hub retaining up to capacity recent messages.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	h := &Hub{
		capacity:    capacity,
		subscribers: make(map[string]*Subscriber),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends a message and delivers it to every current subscriber.
// Publish never blocks: subscribers with full buffers are skipped.
func (h *Hub) Publish(text string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	msg := Message{
		Sequence:  h.nextSeq,
		Timestamp: time.Now().UTC(),
		Text:      text,
	}

	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, msg)

	for _, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
		default:
			// Slow consumer: drop for this subscriber only.
		}
	}
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Subscribe registers a new observer with the given channel buffer.
func (h *Hub) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &Subscriber{
		id:  uuid.NewString(),
		ch:  make(chan Message, buffer),
		hub: h,
	}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// SubscriberCount reports the number of registered observers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Messages returns the subscriber's delivery channel.
func (s *Subscriber) Messages() <-chan Message {
	return s.ch
}

// ID returns the subscriber's registry handle.
func (s *Subscriber) ID() string {
	return s.id
}

// Close removes the subscriber from the registry. Messages already buffered
// remain readable; the channel is not closed so concurrent publishes stay
// safe.
func (s *Subscriber) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.mu.Lock()
	delete(s.hub.subscribers, s.id)
	s.hub.mu.Unlock()
}

// Tail returns the most recent limit messages without blocking, plus the
// cursor for subsequent Fetch calls.
func (h *Hub) Tail(limit int) ([]Message, uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buffer) == 0 {
		return nil, h.nextSeq
	}
	start := len(h.buffer) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(h.buffer)-start)
	copy(out, h.buffer[start:])
	return out, h.nextSeq
}

// Fetch returns buffered messages with sequence greater than since. When
// wait is true and nothing is pending, Fetch blocks until a message arrives
// or the context ends.
func (h *Hub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Message, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		messages, next := h.snapshotLocked(since, limit)
		if len(messages) > 0 || !wait {
			return messages, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
	}
}

func (h *Hub) snapshotLocked(since uint64, limit int) ([]Message, uint64) {
	if len(h.buffer) == 0 {
		return nil, h.nextSeq
	}
	startIdx := -1
	for i, msg := range h.buffer {
		if msg.Sequence > since {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, h.nextSeq
	}
	end := startIdx + limit
	if end > len(h.buffer) {
		end = len(h.buffer)
	}
	out := make([]Message, end-startIdx)
	copy(out, h.buffer[startIdx:end])
	return out, h.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
