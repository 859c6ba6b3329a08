package mint

import (
	"context"
	"sync"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

type walletKey struct {
	drop   domain.DropID
	wallet domain.Account
}

type ordinalKey struct {
	drop    domain.DropID
	ordinal uint64
}

// InMemory keeps mint bookkeeping in maps guarded by a RWMutex.
type InMemory struct {
	mu       sync.RWMutex
	counts   map[walletKey]uint64
	owners   map[ordinalKey]domain.Account
	byWallet map[domain.Account][]domain.DropID
}

func NewInMemory() *InMemory {
	return &InMemory{
		counts:   make(map[walletKey]uint64),
		owners:   make(map[ordinalKey]domain.Account),
		byWallet: make(map[domain.Account][]domain.DropID),
	}
}

func (s *InMemory) WalletCount(_ context.Context, id domain.DropID, wallet domain.Account) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[walletKey{id, wallet}], nil
}

func (s *InMemory) AddWalletCount(_ context.Context, id domain.DropID, wallet domain.Account, quantity uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := walletKey{id, wallet}
	s.counts[key] += quantity
	return s.counts[key], nil
}

func (s *InMemory) RecordOwnership(_ context.Context, id domain.DropID, firstOrdinal, quantity uint64, wallet domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := uint64(0); i < quantity; i++ {
		s.owners[ordinalKey{id, firstOrdinal + i}] = wallet
	}
	return nil
}

func (s *InMemory) OwnerOf(_ context.Context, id domain.DropID, ordinal uint64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[ordinalKey{id, ordinal}]
	if !ok {
		return domain.ZeroAccount, sentinel.ErrNotFound
	}
	return owner, nil
}

func (s *InMemory) AppendMintedDrop(_ context.Context, wallet domain.Account, id domain.DropID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWallet[wallet] = append(s.byWallet[wallet], id)
	return nil
}

func (s *InMemory) MintedDrops(_ context.Context, wallet domain.Account) ([]domain.DropID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byWallet[wallet]
	out := make([]domain.DropID, len(ids))
	copy(out, ids)
	return out, nil
}
