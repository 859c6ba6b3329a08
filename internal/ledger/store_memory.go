package ledger

import (
	"context"
	"sync"

	"dropforge/pkg/domain"
)

// InMemory keeps buckets in a map guarded by a RWMutex.
type InMemory struct {
	mu     sync.RWMutex
	byDrop map[domain.DropID]Buckets
}

func NewInMemory() *InMemory {
	return &InMemory{byDrop: make(map[domain.DropID]Buckets)}
}

func (s *InMemory) Load(_ context.Context, id domain.DropID) (*Buckets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byDrop[id]
	if !ok {
		return &Buckets{DropID: id}, nil
	}
	snapshot := b
	return &snapshot, nil
}

func (s *InMemory) Save(_ context.Context, b *Buckets) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDrop[b.DropID] = *b
	return nil
}
