// Package system owns process-wide launchpad state: the global pause switch
// and the four privileged role accounts fixed at initialization.
package system

import (
	"context"
	"log/slog"
	"sync/atomic"

	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
)

// Roles are the privileged accounts, immutable for the process lifetime.
// The keeper's authority is deliberately narrow: drop-level pause only.
type Roles struct {
	Admin        domain.Account
	Keeper       domain.Account
	Treasury     domain.Account
	FeeRecipient domain.Account
}

// Service gates administrative operations and exposes the pause flag to the
// mint path. Paused is an atomic so the hot path never takes a lock for it.
type Service struct {
	roles  Roles
	paused atomic.Bool
	logger *slog.Logger
}

func New(roles Roles, logger *slog.Logger) *Service {
	return &Service{roles: roles, logger: logger}
}

func (s *Service) Roles() Roles { return s.roles }

// Paused reports whether the whole launchpad is paused.
func (s *Service) Paused() bool { return s.paused.Load() }

// SetPaused toggles the global pause. Administrator only.
func (s *Service) SetPaused(ctx context.Context, actor domain.Account, paused bool) error {
	if err := s.RequireAdmin(actor); err != nil {
		return err
	}
	s.paused.Store(paused)
	s.logger.InfoContext(ctx, "launchpad pause toggled", "paused", paused, "actor", actor.String())
	return nil
}

func (s *Service) RequireAdmin(actor domain.Account) error {
	if actor != s.roles.Admin {
		return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotAdmin, "administrator role required")
	}
	return nil
}

func (s *Service) IsKeeper(actor domain.Account) bool {
	return actor == s.roles.Keeper
}

func (s *Service) RequireTreasury(actor domain.Account) error {
	if actor != s.roles.Treasury {
		return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotTreasury, "treasury role required")
	}
	return nil
}

func (s *Service) RequireFeeRecipient(actor domain.Account) error {
	if actor != s.roles.FeeRecipient {
		return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotFeeRecipient, "fee recipient role required")
	}
	return nil
}
