package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"dropforge/internal/activity"
	"dropforge/internal/bank"
	"dropforge/internal/creator"
	"dropforge/internal/drop"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/locks"
	"dropforge/internal/platform/metrics"
	"dropforge/internal/system"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
)

// Drops is the slice of the drop registry the ledger needs.
type Drops interface {
	Get(ctx context.Context, id domain.DropID) (*drop.Drop, error)
}

// Creators resolves a creator record for bucket authorization.
type Creators interface {
	Get(ctx context.Context, id domain.CreatorID) (*creator.Creator, error)
}

// Service is the proceeds accounting engine. Accrue is pure bookkeeping
// called by the mint engine while it holds the drop lock; Withdraw and
// BatchWithdraw take the lock themselves and move value out through the bank.
type Service struct {
	store    Store
	drops    Drops
	creators Creators
	system   *system.Service
	bank     bank.Transferer
	heights  chain.HeightSource
	dropLock *locks.Keyed[domain.DropID]
	activity *activity.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, drops Drops, creators Creators, sys *system.Service, transfers bank.Transferer, heights chain.HeightSource, dropLock *locks.Keyed[domain.DropID], publisher *activity.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		drops:    drops,
		creators: creators,
		system:   sys,
		bank:     transfers,
		heights:  heights,
		dropLock: dropLock,
		activity: publisher,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accrue splits one payment total into the three pending buckets. The caller
// (the mint engine) already holds the drop lock; taking it again here would
// deadlock, so this method deliberately does not lock.
func (s *Service) Accrue(ctx context.Context, dropID domain.DropID, total uint64, feeBps uint32) error {
	if total == 0 {
		return nil
	}
	b, err := s.store.Load(ctx, dropID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proceeds")
	}
	creatorShare, treasuryShare, feeShare := b.Accrue(total, feeBps)
	if err := s.store.Save(ctx, b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save proceeds")
	}
	if s.metrics != nil {
		s.metrics.AddProceedsAccrued(domain.BucketCreator.String(), creatorShare)
		s.metrics.AddProceedsAccrued(domain.BucketTreasury.String(), treasuryShare)
		s.metrics.AddProceedsAccrued(domain.BucketFee.String(), feeShare)
	}
	return nil
}

// Buckets returns a snapshot of a drop's proceeds record.
func (s *Service) Buckets(ctx context.Context, dropID domain.DropID) (*Buckets, error) {
	if _, err := s.drops.Get(ctx, dropID); err != nil {
		return nil, err
	}
	b, err := s.store.Load(ctx, dropID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proceeds")
	}
	return b, nil
}

// Withdraw drains one bucket to the actor's account. The bucket is zeroed
// and saved before the transfer is attempted; if the transfer then fails the
// balance stays zeroed and the amount is reported in the error and activity
// record so operators can reconcile out of band.
func (s *Service) Withdraw(ctx context.Context, dropID domain.DropID, kind domain.BucketKind, actor domain.Account) (uint64, error) {
	if !kind.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown bucket kind")
	}

	s.dropLock.Lock(dropID)
	defer s.dropLock.Unlock(dropID)

	d, err := s.drops.Get(ctx, dropID)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(ctx, d, kind, actor); err != nil {
		return 0, err
	}

	b, err := s.store.Load(ctx, dropID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proceeds")
	}
	amount := b.Drain(kind)
	if amount == 0 {
		return 0, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindZeroAmount, "bucket has nothing to withdraw")
	}
	if err := s.store.Save(ctx, b); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save proceeds")
	}

	transferErr := s.bank.Credit(ctx, actor, amount)
	s.emitWithdrawn(ctx, activity.ActionProceedsWithdrawn, d.CreatorID, dropID, kind, actor, amount)
	if transferErr != nil {
		s.logger.ErrorContext(ctx, "withdrawal transfer failed after drain",
			"drop_id", dropID, "bucket", kind.String(), "amount", amount, "error", transferErr)
		return 0, dErrors.WrapKind(transferErr, dErrors.CodeUnavailable, dErrors.KindTransferFailed,
			fmt.Sprintf("transfer of %d failed; bucket drained", amount))
	}

	if s.metrics != nil {
		s.metrics.AddProceedsWithdrawn(kind.String(), amount)
	}
	s.logger.InfoContext(ctx, "proceeds withdrawn",
		"drop_id", dropID, "bucket", kind.String(), "amount", amount)
	return amount, nil
}

// BatchWithdraw drains the same bucket across many drops into one transfer.
// Role buckets only; the creator bucket is always withdrawn per drop.
func (s *Service) BatchWithdraw(ctx context.Context, dropIDs []domain.DropID, kind domain.BucketKind, actor domain.Account) (uint64, error) {
	if kind != domain.BucketTreasury && kind != domain.BucketFee {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "batch withdrawal supports treasury and fee buckets only")
	}
	if len(dropIDs) == 0 {
		return 0, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindEmptyBatch, "no drops in batch")
	}
	if err := s.authorizeRole(kind, actor); err != nil {
		return 0, err
	}

	// Validate the whole batch before draining anything: a bad ID must not
	// leave a partial sweep behind.
	for _, id := range dropIDs {
		if _, err := s.drops.Get(ctx, id); err != nil {
			return 0, err
		}
	}

	var total uint64
	for _, id := range dropIDs {
		amount, err := s.drainOne(ctx, id, kind)
		if err != nil {
			return 0, err
		}
		total += amount
	}
	if total == 0 {
		return 0, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindZeroAmount, "batch has nothing to withdraw")
	}

	transferErr := s.bank.Credit(ctx, actor, total)
	s.emitWithdrawn(ctx, activity.ActionProceedsSwept, 0, 0, kind, actor, total)
	if transferErr != nil {
		s.logger.ErrorContext(ctx, "sweep transfer failed after drain",
			"bucket", kind.String(), "amount", total, "drops", len(dropIDs), "error", transferErr)
		return 0, dErrors.WrapKind(transferErr, dErrors.CodeUnavailable, dErrors.KindTransferFailed,
			fmt.Sprintf("transfer of %d failed; buckets drained", total))
	}

	if s.metrics != nil {
		s.metrics.AddProceedsWithdrawn(kind.String(), total)
	}
	s.logger.InfoContext(ctx, "proceeds swept",
		"bucket", kind.String(), "amount", total, "drops", len(dropIDs))
	return total, nil
}

func (s *Service) drainOne(ctx context.Context, id domain.DropID, kind domain.BucketKind) (uint64, error) {
	s.dropLock.Lock(id)
	defer s.dropLock.Unlock(id)

	b, err := s.store.Load(ctx, id)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proceeds")
	}
	amount := b.Drain(kind)
	if amount == 0 {
		return 0, nil
	}
	if err := s.store.Save(ctx, b); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save proceeds")
	}
	return amount, nil
}

func (s *Service) authorize(ctx context.Context, d *drop.Drop, kind domain.BucketKind, actor domain.Account) error {
	if kind == domain.BucketCreator {
		c, err := s.creators.Get(ctx, d.CreatorID)
		if err != nil {
			return err
		}
		if c.Account != actor {
			return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotOwner, "creator bucket belongs to the drop's creator")
		}
		return nil
	}
	return s.authorizeRole(kind, actor)
}

func (s *Service) authorizeRole(kind domain.BucketKind, actor domain.Account) error {
	if kind == domain.BucketTreasury {
		return s.system.RequireTreasury(actor)
	}
	return s.system.RequireFeeRecipient(actor)
}

func (s *Service) emitWithdrawn(ctx context.Context, action activity.Action, creatorID domain.CreatorID, dropID domain.DropID, kind domain.BucketKind, actor domain.Account, amount uint64) {
	s.activity.EmitBestEffort(ctx, activity.Event{
		Action:    action,
		Height:    chain.At(ctx, s.heights),
		Actor:     actor.String(),
		CreatorID: creatorID,
		DropID:    dropID,
		Bucket:    kind.String(),
		Amount:    amount,
	})
}
