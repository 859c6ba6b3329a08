// Package mint executes the purchase path: phase admissibility, allowlist
// proof, supply caps, payment, and the bookkeeping that follows.
package mint

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

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
	"dropforge/pkg/platform/sentinel"
)

// Creators is the slice of the creator registry the engine needs.
type Creators interface {
	Get(ctx context.Context, id domain.CreatorID) (*creator.Creator, error)
	RecordUnitsMinted(ctx context.Context, id domain.CreatorID, quantity uint64) error
}

// Accruer books mint proceeds. Satisfied by the proceeds ledger service.
type Accruer interface {
	Accrue(ctx context.Context, id domain.DropID, total uint64, feeBps uint32) error
}

// ProofVerifier checks allowlist membership.
type ProofVerifier interface {
	Verify(id domain.DropID, phase domain.PhaseIndex, account domain.Account, root domain.Hash, proof []domain.Hash) bool
}

// Request is one mint attempt.
type Request struct {
	DropID   domain.DropID
	Phase    domain.PhaseIndex
	Quantity uint64
	Payment  uint64
	Proof    []domain.Hash
	Minter   domain.Account
}

// Receipt reports a successful mint. Ordinals are zero-based: FirstOrdinal
// of the drop's very first mint is 0.
type Receipt struct {
	DropID       domain.DropID     `json:"drop_id"`
	Phase        domain.PhaseIndex `json:"phase"`
	FirstOrdinal uint64            `json:"first_ordinal"`
	Quantity     uint64            `json:"quantity"`
	Paid         uint64            `json:"paid"`
	Refunded     uint64            `json:"refunded"`
}

// Engine runs mints under the shared per-drop lock. Validation is read-only;
// once payment clears, the commit steps cannot be rejected, so no rollback
// path exists past the debit.
type Engine struct {
	store    Store
	drops    drop.Store
	creators Creators
	ledger   Accruer
	verifier ProofVerifier
	system   *system.Service
	bank     bank.Transferer
	heights  chain.HeightSource
	dropLock *locks.Keyed[domain.DropID]
	activity *activity.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(store Store, drops drop.Store, creators Creators, ledger Accruer, verifier ProofVerifier, sys *system.Service, transfers bank.Transferer, heights chain.HeightSource, dropLock *locks.Keyed[domain.DropID], publisher *activity.Publisher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		drops:    drops,
		creators: creators,
		ledger:   ledger,
		verifier: verifier,
		system:   sys,
		bank:     transfers,
		heights:  heights,
		dropLock: dropLock,
		activity: publisher,
		logger:   logger,
		tracer:   otel.Tracer("dropforge/mint"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mint validates, charges, and commits one mint request.
func (e *Engine) Mint(ctx context.Context, req Request) (*Receipt, error) {
	ctx, span := e.tracer.Start(ctx, "mint.Mint", trace.WithAttributes(
		attribute.Int64("drop_id", int64(req.DropID)),
		attribute.Int("phase", int(req.Phase)),
		attribute.Int64("quantity", int64(req.Quantity)),
	))
	defer span.End()

	receipt, err := e.mint(ctx, req)
	if err != nil {
		span.RecordError(err)
		if e.metrics != nil {
			e.metrics.IncMintRejected(string(dErrors.KindOf(err)))
		}
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.MintsExecuted.Inc()
		e.metrics.UnitsMinted.Add(float64(req.Quantity))
	}
	return receipt, nil
}

func (e *Engine) mint(ctx context.Context, req Request) (*Receipt, error) {
	if req.Quantity == 0 {
		return nil, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindZeroAmount, "quantity must be positive")
	}
	if e.system.Paused() {
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindLaunchpadPaused, "launchpad is paused")
	}

	e.dropLock.Lock(req.DropID)
	defer e.dropLock.Unlock(req.DropID)

	d, err := e.loadDrop(ctx, req.DropID)
	if err != nil {
		return nil, err
	}
	if d.Paused {
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindDropPaused, "drop is paused")
	}
	p, err := d.PhaseAt(req.Phase)
	if err != nil {
		return nil, err
	}

	height := chain.At(ctx, e.heights)
	switch p.StateAt(height) {
	case drop.PhaseNotStarted:
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindPhaseNotStarted, "phase has not started")
	case drop.PhaseEnded:
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindPhaseEnded, "phase has ended")
	}

	if p.AllowlistOnly {
		if len(req.Proof) == 0 {
			return nil, dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindAllowlistRequired, "phase requires an allowlist proof")
		}
		if !e.verifier.Verify(req.DropID, req.Phase, req.Minter, p.AllowlistRoot, req.Proof) {
			return nil, dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindInvalidProof, "allowlist proof does not verify")
		}
	}

	if req.Quantity > d.MaxSupply-d.MintedSupply {
		return nil, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindMaxSupplyReached, "quantity exceeds remaining supply")
	}
	walletBefore, err := e.store.WalletCount(ctx, req.DropID, req.Minter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wallet count")
	}
	if d.PerWalletCap > 0 && walletBefore+req.Quantity > d.PerWalletCap {
		return nil, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindMaxPerWalletExceeded, "quantity exceeds per-wallet cap")
	}
	if p.MintCap > 0 && (p.MintedCount >= p.MintCap || req.Quantity > p.MintCap-p.MintedCount) {
		return nil, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindPhaseCapReached, "quantity exceeds phase cap")
	}
	c, err := e.creators.Get(ctx, d.CreatorID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindCreatorInactive, "creator is deactivated")
	}

	required, ok := mulNoOverflow(d.UnitPrice, req.Quantity)
	if !ok || req.Payment < required {
		return nil, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindInsufficientPayment, "payment does not cover price")
	}

	// Payment. After the refund settles nothing else can fail the mint, so
	// the commit below needs no rollback path.
	if err := e.bank.Debit(ctx, req.Minter, req.Payment); err != nil {
		return nil, dErrors.WrapKind(err, dErrors.CodeFailedPrecondition, dErrors.KindTransferFailed, "payment debit failed")
	}
	refund := req.Payment - required
	if refund > 0 {
		if err := e.bank.Credit(ctx, req.Minter, refund); err != nil {
			if undoErr := e.bank.Credit(ctx, req.Minter, req.Payment); undoErr != nil {
				e.logger.ErrorContext(ctx, "failed to return payment after refund failure",
					"drop_id", req.DropID, "minter", req.Minter.String(), "amount", req.Payment, "error", undoErr)
			}
			return nil, dErrors.WrapKind(err, dErrors.CodeUnavailable, dErrors.KindTransferFailed, "refund credit failed")
		}
	}

	firstOrdinal := d.MintedSupply
	d.MintedSupply += req.Quantity
	p.MintedCount += req.Quantity
	if err := e.drops.Save(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save drop counters")
	}
	if _, err := e.store.AddWalletCount(ctx, req.DropID, req.Minter, req.Quantity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to bump wallet count")
	}
	if walletBefore == 0 {
		if err := e.store.AppendMintedDrop(ctx, req.Minter, req.DropID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to index minted drop")
		}
	}
	if err := e.store.RecordOwnership(ctx, req.DropID, firstOrdinal, req.Quantity, req.Minter); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ownership")
	}
	if err := e.creators.RecordUnitsMinted(ctx, d.CreatorID, req.Quantity); err != nil {
		return nil, err
	}
	// Only the required total is booked; overpayment was refunded, never
	// split.
	if err := e.ledger.Accrue(ctx, req.DropID, required, d.FeeBps); err != nil {
		return nil, err
	}

	if err := e.activity.Emit(ctx, activity.Event{
		Action:    activity.ActionMintExecuted,
		Height:    height,
		Actor:     req.Minter.String(),
		CreatorID: d.CreatorID,
		DropID:    req.DropID,
		Phase:     activity.PhaseRef(req.Phase),
		Quantity:  req.Quantity,
		Amount:    required,
		FirstUnit: firstOrdinal,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record mint activity")
	}

	e.logger.InfoContext(ctx, "mint executed",
		"drop_id", req.DropID, "phase", req.Phase, "minter", req.Minter.String(),
		"quantity", req.Quantity, "paid", required, "refunded", refund, "first_ordinal", firstOrdinal)

	return &Receipt{
		DropID:       req.DropID,
		Phase:        req.Phase,
		FirstOrdinal: firstOrdinal,
		Quantity:     req.Quantity,
		Paid:         required,
		Refunded:     refund,
	}, nil
}

// OwnerOf resolves the wallet that minted one ordinal of a drop.
func (e *Engine) OwnerOf(ctx context.Context, id domain.DropID, ordinal uint64) (domain.Account, error) {
	if _, err := e.loadDrop(ctx, id); err != nil {
		return domain.ZeroAccount, err
	}
	owner, err := e.store.OwnerOf(ctx, id, ordinal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAccount, dErrors.New(dErrors.CodeNotFound, "ordinal has not been minted")
		}
		return domain.ZeroAccount, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}
	return owner, nil
}

// WalletMintCount reports how many units a wallet has minted from a drop.
func (e *Engine) WalletMintCount(ctx context.Context, id domain.DropID, wallet domain.Account) (uint64, error) {
	count, err := e.store.WalletCount(ctx, id, wallet)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wallet count")
	}
	return count, nil
}

// MintedDrops lists the drops a wallet has minted from, in first-mint order.
func (e *Engine) MintedDrops(ctx context.Context, wallet domain.Account) ([]domain.DropID, error) {
	ids, err := e.store.MintedDrops(ctx, wallet)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list minted drops")
	}
	return ids, nil
}

func (e *Engine) loadDrop(ctx context.Context, id domain.DropID) (*drop.Drop, error) {
	d, err := e.drops.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindDropNotFound, "drop not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load drop")
	}
	return d, nil
}

func mulNoOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}
