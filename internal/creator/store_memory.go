package creator

import (
	"context"
	"sync"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

// InMemory keeps creators in maps guarded by a RWMutex. The id counter lives
// under the same lock, so allocation and the unique-account check are atomic.
type InMemory struct {
	mu        sync.RWMutex
	nextID    domain.CreatorID
	ceiling   uint64
	byID      map[domain.CreatorID]*Creator
	byAccount map[domain.Account]domain.CreatorID
}

func NewInMemory(ceiling uint64) *InMemory {
	return &InMemory{
		nextID:    1,
		ceiling:   ceiling,
		byID:      make(map[domain.CreatorID]*Creator),
		byAccount: make(map[domain.Account]domain.CreatorID),
	}
}

func (s *InMemory) Create(_ context.Context, c *Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAccount[c.Account]; exists {
		return sentinel.ErrConflict
	}
	if s.ceiling > 0 && uint64(len(s.byID)) >= s.ceiling {
		return sentinel.ErrCapacity
	}
	c.ID = s.nextID
	s.nextID++
	stored := *c
	s.byID[c.ID] = &stored
	s.byAccount[c.Account] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CreatorID) (*Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *c
	return &snapshot, nil
}

func (s *InMemory) FindByAccount(_ context.Context, account domain.Account) (*Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAccount[account]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *s.byID[id]
	return &snapshot, nil
}

func (s *InMemory) Save(_ context.Context, c *Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Account != c.Account {
		// The account is the unique index; it never changes.
		return sentinel.ErrInvalidState
	}
	stored := *c
	s.byID[c.ID] = &stored
	return nil
}

func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.byID)), nil
}
