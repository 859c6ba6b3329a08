// Package bank is the balance-credit ledger that stands in for external value
// transfer. Receiving funds is just a credit here, so the "transfer target
// may reject or reenter" hazard of the original setting disappears; the
// zero-before-transfer discipline in the proceeds ledger is kept anyway as
// defense in depth.
package bank

import (
	"context"
	"errors"
	"sync"

	"dropforge/pkg/domain"
)

// ErrInsufficientFunds is returned when a debit exceeds the account balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrOverflow is returned when a credit would overflow the balance.
var ErrOverflow = errors.New("balance overflow")

// Transferer moves value between the engine and accounts. The production
// implementation is Service below; ledger tests inject failing
// implementations to exercise the TransferFailed paths.
type Transferer interface {
	// Debit removes amount from account, failing without effect if the
	// balance is too small.
	Debit(ctx context.Context, account domain.Account, amount uint64) error
	// Credit adds amount to account.
	Credit(ctx context.Context, account domain.Account, amount uint64) error
}

// Service is an in-process account balance ledger.
type Service struct {
	mu       sync.RWMutex
	balances map[domain.Account]uint64
}

func NewService() *Service {
	return &Service{balances: make(map[domain.Account]uint64)}
}

func (s *Service) Debit(_ context.Context, account domain.Account, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := s.balances[account]
	if balance < amount {
		return ErrInsufficientFunds
	}
	s.balances[account] = balance - amount
	return nil
}

func (s *Service) Credit(_ context.Context, account domain.Account, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := s.balances[account]
	if balance+amount < balance {
		return ErrOverflow
	}
	s.balances[account] = balance + amount
	return nil
}

// Deposit funds an account from outside the system (onboarding, dev faucet).
func (s *Service) Deposit(ctx context.Context, account domain.Account, amount uint64) error {
	return s.Credit(ctx, account, amount)
}

// Balance reports the current balance of an account.
func (s *Service) Balance(_ context.Context, account domain.Account) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account]
}
