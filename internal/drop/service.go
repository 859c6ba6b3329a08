package drop

import (
	"context"
	"errors"
	"log/slog"

	"dropforge/internal/activity"
	"dropforge/internal/creator"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/locks"
	"dropforge/internal/platform/metrics"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/platform/sentinel"
)

// Creators is the slice of the creator registry the drop registry needs.
type Creators interface {
	Get(ctx context.Context, id domain.CreatorID) (*creator.Creator, error)
	RecordDropScheduled(ctx context.Context, id domain.CreatorID) error
}

// Service owns drop configuration and the per-drop phase registry. All
// mutations of one drop are serialized on the shared keyed lock, the same
// lock the mint engine holds while committing, so a phase edit can never
// interleave with a mint's validate-then-commit window.
type Service struct {
	store    Store
	creators Creators
	heights  chain.HeightSource
	dropLock *locks.Keyed[domain.DropID]
	activity *activity.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics

	keeper        domain.Account
	feeCeiling    uint32
	phaseCapacity int
}

type Config struct {
	Keeper        domain.Account
	FeeBpsCeiling uint32
	PhaseCapacity int
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, creators Creators, heights chain.HeightSource, dropLock *locks.Keyed[domain.DropID], publisher *activity.Publisher, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:         store,
		creators:      creators,
		heights:       heights,
		dropLock:      dropLock,
		activity:      publisher,
		logger:        logger,
		keeper:        cfg.Keeper,
		feeCeiling:    cfg.FeeBpsCeiling,
		phaseCapacity: cfg.PhaseCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule creates a drop for an active creator. Supply, fee rate, and the
// global drop ceiling are validated here; after this call the drop's supply
// arithmetic is enforced by the mint engine at the point of mutation.
func (s *Service) Schedule(ctx context.Context, creatorID domain.CreatorID, actor domain.Account, content domain.Hash, maxSupply, unitPrice uint64, feeBps uint32, perWalletCap uint64) (*Drop, error) {
	c, err := s.creators.Get(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if c.Account != actor {
		return nil, dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotOwner, "actor does not own this creator record")
	}
	if !c.Active {
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindCreatorInactive, "creator is deactivated")
	}

	height := chain.At(ctx, s.heights)
	d, err := NewDrop(creatorID, content, maxSupply, unitPrice, feeBps, perWalletCap, s.feeCeiling, s.phaseCapacity, height)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrCapacity) {
			return nil, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindCapacityExceeded, "drop registry is full")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to schedule drop")
	}
	if err := s.creators.RecordDropScheduled(ctx, creatorID); err != nil {
		return nil, err
	}

	s.activity.EmitBestEffort(ctx, activity.Event{
		Action:    activity.ActionDropScheduled,
		Height:    height,
		Actor:     c.Account.String(),
		CreatorID: creatorID,
		DropID:    d.ID,
	})
	if s.metrics != nil {
		s.metrics.DropsScheduled.Inc()
	}
	s.logger.InfoContext(ctx, "drop scheduled", "drop_id", d.ID, "creator_id", creatorID, "max_supply", maxSupply)
	return d, nil
}

// Get returns a snapshot of a drop.
func (s *Service) Get(ctx context.Context, id domain.DropID) (*Drop, error) {
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindDropNotFound, "drop not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load drop")
	}
	return d, nil
}

// GetPhase returns a snapshot of one configured phase.
func (s *Service) GetPhase(ctx context.Context, id domain.DropID, index domain.PhaseIndex) (*Phase, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := d.PhaseAt(index)
	if err != nil {
		return nil, err
	}
	snapshot := *p
	return &snapshot, nil
}

// ListByCreator returns the creator's drop ids, oldest first.
func (s *Service) ListByCreator(ctx context.Context, creatorID domain.CreatorID) ([]domain.DropID, error) {
	ids, err := s.store.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list drops")
	}
	return ids, nil
}

// UpdateContent replaces the content fingerprint. Owner only, not after
// finalize.
func (s *Service) UpdateContent(ctx context.Context, id domain.DropID, actor domain.Account, content domain.Hash) error {
	return s.mutate(ctx, id, actor, ownerOnly, activity.ActionContentUpdated, func(d *Drop) error {
		if err := d.RequireNotFinalized(); err != nil {
			return err
		}
		d.ContentFingerprint = content
		return nil
	})
}

// SetLabel sets the optional label fingerprint. Owner only, not after
// finalize.
func (s *Service) SetLabel(ctx context.Context, id domain.DropID, actor domain.Account, label domain.Hash) error {
	return s.mutate(ctx, id, actor, ownerOnly, activity.ActionLabelUpdated, func(d *Drop) error {
		if err := d.RequireNotFinalized(); err != nil {
			return err
		}
		d.LabelFingerprint = label
		return nil
	})
}

// SetPaused toggles the drop pause flag. Two independent authorization paths
// reach this mutation: the owning creator, and the keeper role for
// operational response. The keeper gets no other privilege.
func (s *Service) SetPaused(ctx context.Context, id domain.DropID, actor domain.Account, paused bool) error {
	byKeeper := actor == s.keeper
	auth := ownerOnly
	if byKeeper {
		auth = keeperAllowed
	}
	err := s.mutateEvent(ctx, id, actor, auth, func(d *Drop) (activity.Event, error) {
		d.Paused = paused
		return activity.Event{
			Action:   activity.ActionDropPaused,
			Paused:   activity.BoolRef(paused),
			ByKeeper: byKeeper,
		}, nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "drop pause toggled", "drop_id", id, "paused", paused, "by_keeper", byKeeper)
	}
	return err
}

// Finalize locks the drop's configuration permanently. Owner only.
func (s *Service) Finalize(ctx context.Context, id domain.DropID, actor domain.Account) error {
	return s.mutate(ctx, id, actor, ownerOnly, activity.ActionDropFinalized, func(d *Drop) error {
		if err := d.RequireNotFinalized(); err != nil {
			return err
		}
		d.Finalized = true
		return nil
	})
}

// AddPhase configures the first free phase slot. Owner only, not after
// finalize; start must precede end.
func (s *Service) AddPhase(ctx context.Context, id domain.DropID, actor domain.Account, start, end uint64, allowlistOnly bool, root domain.Hash) (domain.PhaseIndex, error) {
	var index domain.PhaseIndex
	err := s.mutateEvent(ctx, id, actor, ownerOnly, func(d *Drop) (activity.Event, error) {
		var err error
		index, err = d.AddPhase(start, end, allowlistOnly, root)
		if err != nil {
			return activity.Event{}, err
		}
		return activity.Event{
			Action: activity.ActionPhaseAdded,
			Phase:  activity.PhaseRef(index),
		}, nil
	})
	return index, err
}

// UpdatePhaseBounds reshapes a configured phase's window. Live and ended
// phases may be reshaped until finalize; that is intentional operational
// flexibility, not a gap.
func (s *Service) UpdatePhaseBounds(ctx context.Context, id domain.DropID, index domain.PhaseIndex, actor domain.Account, start, end uint64) error {
	return s.mutatePhase(ctx, id, index, actor, activity.ActionPhaseBoundsUpdated, func(p *Phase) error {
		if start >= end {
			return dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindInvalidPhaseBounds, "phase start must be before end")
		}
		p.StartHeight = start
		p.EndHeight = end
		return nil
	})
}

// SetAllowlistRoot replaces a configured phase's allowlist commitment.
func (s *Service) SetAllowlistRoot(ctx context.Context, id domain.DropID, index domain.PhaseIndex, actor domain.Account, root domain.Hash) error {
	return s.mutatePhase(ctx, id, index, actor, activity.ActionAllowlistRootSet, func(p *Phase) error {
		p.AllowlistRoot = root
		return nil
	})
}

// SetPhaseCap replaces a configured phase's mint cap. 0 means unlimited. A
// cap below the current minted count only blocks further mints; it does not
// rewrite history.
func (s *Service) SetPhaseCap(ctx context.Context, id domain.DropID, index domain.PhaseIndex, actor domain.Account, cap uint64) error {
	return s.mutatePhase(ctx, id, index, actor, activity.ActionPhaseCapSet, func(p *Phase) error {
		p.MintCap = cap
		return nil
	})
}

type authMode int

const (
	ownerOnly authMode = iota
	keeperAllowed
)

// mutate runs a locked read-modify-write on one drop with owner (or keeper)
// authorization, then emits a fixed-action activity event.
func (s *Service) mutate(ctx context.Context, id domain.DropID, actor domain.Account, auth authMode, action activity.Action, fn func(*Drop) error) error {
	return s.mutateEvent(ctx, id, actor, auth, func(d *Drop) (activity.Event, error) {
		if err := fn(d); err != nil {
			return activity.Event{}, err
		}
		return activity.Event{Action: action}, nil
	})
}

func (s *Service) mutateEvent(ctx context.Context, id domain.DropID, actor domain.Account, auth authMode, fn func(*Drop) (activity.Event, error)) error {
	s.dropLock.Lock(id)
	defer s.dropLock.Unlock(id)

	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if auth == ownerOnly {
		if err := s.requireOwner(ctx, d, actor); err != nil {
			return err
		}
	}

	event, err := fn(d)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, d); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save drop")
	}

	event.Height = chain.At(ctx, s.heights)
	event.Actor = actor.String()
	event.CreatorID = d.CreatorID
	event.DropID = id
	s.activity.EmitBestEffort(ctx, event)
	return nil
}

// mutatePhase runs a locked owner-only mutation of one configured phase.
// Finalize locks phases along with the rest of the configuration.
func (s *Service) mutatePhase(ctx context.Context, id domain.DropID, index domain.PhaseIndex, actor domain.Account, action activity.Action, fn func(*Phase) error) error {
	return s.mutateEvent(ctx, id, actor, ownerOnly, func(d *Drop) (activity.Event, error) {
		if err := d.RequireNotFinalized(); err != nil {
			return activity.Event{}, err
		}
		p, err := d.PhaseAt(index)
		if err != nil {
			return activity.Event{}, err
		}
		if err := fn(p); err != nil {
			return activity.Event{}, err
		}
		return activity.Event{Action: action, Phase: activity.PhaseRef(index)}, nil
	})
}

func (s *Service) requireOwner(ctx context.Context, d *Drop, actor domain.Account) error {
	c, err := s.creators.Get(ctx, d.CreatorID)
	if err != nil {
		return err
	}
	if c.Account != actor {
		return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotOwner, "actor does not own this drop")
	}
	return nil
}
