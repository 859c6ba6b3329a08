package drop

import (
	"context"
	"sync"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

// InMemory keeps drops in a map guarded by a RWMutex, with a per-creator
// index maintained on create.
type InMemory struct {
	mu        sync.RWMutex
	nextID    domain.DropID
	ceiling   uint64
	byID      map[domain.DropID]*Drop
	byCreator map[domain.CreatorID][]domain.DropID
}

func NewInMemory(ceiling uint64) *InMemory {
	return &InMemory{
		nextID:    1,
		ceiling:   ceiling,
		byID:      make(map[domain.DropID]*Drop),
		byCreator: make(map[domain.CreatorID][]domain.DropID),
	}
}

func (s *InMemory) Create(_ context.Context, d *Drop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ceiling > 0 && uint64(len(s.byID)) >= s.ceiling {
		return sentinel.ErrCapacity
	}
	d.ID = s.nextID
	s.nextID++
	s.byID[d.ID] = clone(d)
	s.byCreator[d.CreatorID] = append(s.byCreator[d.CreatorID], d.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.DropID) (*Drop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(d), nil
}

func (s *InMemory) Save(_ context.Context, d *Drop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.CreatorID != d.CreatorID {
		// Ownership never moves between creators.
		return sentinel.ErrInvalidState
	}
	s.byID[d.ID] = clone(d)
	return nil
}

func (s *InMemory) ListByCreator(_ context.Context, creatorID domain.CreatorID) ([]domain.DropID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byCreator[creatorID]
	out := make([]domain.DropID, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.byID)), nil
}

// clone deep-copies a drop so callers never share the stored phase slice.
func clone(d *Drop) *Drop {
	out := *d
	out.Phases = make([]Phase, len(d.Phases))
	copy(out.Phases, d.Phases)
	return &out
}
