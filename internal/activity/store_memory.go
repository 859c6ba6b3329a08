package activity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps events in an append-only slice. It favors clarity over
// performance and backs unit tests and single-process deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []Event
	published map[uuid.UUID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{published: make(map[uuid.UUID]bool)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) UnpublishedBatch(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch := make([]Event, 0, limit)
	for _, e := range s.events {
		if s.published[e.ID] {
			continue
		}
		batch = append(batch, e)
		if len(batch) == limit {
			break
		}
	}
	return batch, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

func (s *InMemoryStore) PendingCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := 0
	for _, e := range s.events {
		if !s.published[e.ID] {
			pending++
		}
	}
	return pending, nil
}

// All returns a snapshot of every recorded event, oldest first. For tests
// and local inspection.
func (s *InMemoryStore) All(_ context.Context) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
