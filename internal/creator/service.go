package creator

import (
	"context"
	"errors"
	"log/slog"

	"dropforge/internal/activity"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/metrics"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/platform/sentinel"
)

// Service orchestrates the creator registry: registration, handle updates,
// administrator deactivation, and the aggregate counters other components
// bump.
type Service struct {
	store    Store
	heights  chain.HeightSource
	activity *activity.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, heights chain.HeightSource, publisher *activity.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		heights:  heights,
		activity: publisher,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a creator record for account. One record per account,
// enforced by the store's unique index; the global ceiling applies.
func (s *Service) Register(ctx context.Context, account domain.Account, handle domain.Hash) (*Creator, error) {
	height := chain.At(ctx, s.heights)
	c, err := NewCreator(account, handle, height)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.NewKind(dErrors.CodeConflict, dErrors.KindAlreadyRegistered, "account already has a creator record")
		case errors.Is(err, sentinel.ErrCapacity):
			return nil, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindCapacityExceeded, "creator registry is full")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register creator")
		}
	}

	s.activity.EmitBestEffort(ctx, activity.Event{
		Action:    activity.ActionCreatorOnboarded,
		Height:    height,
		Actor:     account.String(),
		CreatorID: c.ID,
	})
	if s.metrics != nil {
		s.metrics.CreatorsRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "creator registered", "creator_id", c.ID, "account", account.String())
	return c, nil
}

// UpdateHandle replaces the creator's handle fingerprint. Owner only.
func (s *Service) UpdateHandle(ctx context.Context, id domain.CreatorID, actor domain.Account, handle domain.Hash) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.RequireOwner(actor); err != nil {
		return err
	}

	c.HandleFingerprint = handle
	if err := s.store.Save(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update handle")
	}

	s.activity.EmitBestEffort(ctx, activity.Event{
		Action:    activity.ActionHandleUpdated,
		Height:    chain.At(ctx, s.heights),
		Actor:     actor.String(),
		CreatorID: id,
	})
	return nil
}

// Deactivate flips the activity flag off, permanently. The administrator
// check happens at the transport boundary; the service only validates the
// transition.
func (s *Service) Deactivate(ctx context.Context, id domain.CreatorID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.CanDeactivate(); err != nil {
		return err
	}
	c.ApplyDeactivation()

	if err := s.store.Save(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate creator")
	}

	s.activity.EmitBestEffort(ctx, activity.Event{
		Action:    activity.ActionCreatorDeactivated,
		Height:    chain.At(ctx, s.heights),
		CreatorID: id,
	})
	s.logger.InfoContext(ctx, "creator deactivated", "creator_id", id)
	return nil
}

// Get returns a snapshot of the creator. Absence (unknown id) is distinct
// from inactive: the former is CreatorNotFound, the latter a live record with
// Active=false.
func (s *Service) Get(ctx context.Context, id domain.CreatorID) (*Creator, error) {
	if id.IsNil() {
		return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindCreatorNotFound, "creator id 0 is reserved")
	}
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindCreatorNotFound, "creator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load creator")
	}
	return c, nil
}

// GetByAccount resolves the unique account index.
func (s *Service) GetByAccount(ctx context.Context, account domain.Account) (*Creator, error) {
	c, err := s.store.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindCreatorNotFound, "no creator for account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load creator")
	}
	return c, nil
}

// RecordDropScheduled bumps the creator's drop counter. Called by the drop
// registry inside its schedule flow.
func (s *Service) RecordDropScheduled(ctx context.Context, id domain.CreatorID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.DropsCreated++
	if err := s.store.Save(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record scheduled drop")
	}
	return nil
}

// RecordUnitsMinted bumps the creator's aggregate mint counter. Called by the
// mint engine during commit; the engine holds the drop lock.
func (s *Service) RecordUnitsMinted(ctx context.Context, id domain.CreatorID, quantity uint64) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.UnitsMinted += quantity
	if err := s.store.Save(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record minted units")
	}
	return nil
}
