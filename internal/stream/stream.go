package stream

import (
	"context"
	"sync"
	"time"
)

// Event is one audit occurrence pushed to live dashboard feeds.
type Event struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	Module          string    `json:"module"`
	UserID          string    `json:"user_id"`
	SystemEditionID string    `json:"system_edition_id,omitempty"`
	CompanyID       string    `json:"company_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Stream fan-outs audit events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// Subscribers reports the number of attached feeds.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
