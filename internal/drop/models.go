package drop

import (
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
)

// Drop is the aggregate root for one release: fixed supply, price, fee rate,
// and a bounded array of mint phases.
//
// Invariants:
//   - MintedSupply <= MaxSupply at all times
//   - FeeBps never exceeds the configured ceiling (checked at schedule time)
//   - MaxSupply is immutable; no resize operation exists
//   - Finalized is one-way and locks configuration (content, label, phases);
//     it does not gate minting itself
//   - A phase slot, once configured, keeps its index forever
type Drop struct {
	ID                 domain.DropID    `json:"id"`
	CreatorID          domain.CreatorID `json:"creator_id"`
	ContentFingerprint domain.Hash      `json:"content_fingerprint"`
	LabelFingerprint   domain.Hash      `json:"label_fingerprint,omitempty"`
	MaxSupply          uint64           `json:"max_supply"`
	MintedSupply       uint64           `json:"minted_supply"`
	UnitPrice          uint64           `json:"unit_price"`
	FeeBps             uint32           `json:"fee_bps"`
	PerWalletCap       uint64           `json:"per_wallet_cap"` // 0 = unlimited
	Paused             bool             `json:"paused"`
	Finalized          bool             `json:"finalized"`
	ScheduledAt        uint64           `json:"scheduled_at"`
	Phases             []Phase          `json:"phases"`
}

// Phase is one time-bounded mint window inside a drop. Bounds are heights,
// inclusive on both ends. Phase state is derived at mint time, never stored.
type Phase struct {
	StartHeight   uint64      `json:"start_height"`
	EndHeight     uint64      `json:"end_height"`
	AllowlistOnly bool        `json:"allowlist_only"`
	AllowlistRoot domain.Hash `json:"allowlist_root,omitempty"`
	MintCap       uint64      `json:"mint_cap"` // 0 = unlimited
	MintedCount   uint64      `json:"minted_count"`
	Configured    bool        `json:"configured"`
}

// PhaseState is the derived lifecycle of a (drop, phase) pair. Ended is
// terminal: heights only move forward.
type PhaseState int

const (
	PhaseNotStarted PhaseState = iota
	PhaseActive
	PhaseEnded
)

// StateAt derives the phase state at the given height.
func (p *Phase) StateAt(height uint64) PhaseState {
	switch {
	case height < p.StartHeight:
		return PhaseNotStarted
	case height > p.EndHeight:
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// NewDrop validates schedule-time configuration. The fee ceiling is passed in
// because it is deployment configuration, not a property of the drop.
func NewDrop(creatorID domain.CreatorID, content domain.Hash, maxSupply, unitPrice uint64, feeBps uint32, perWalletCap uint64, feeCeiling uint32, phaseCapacity int, height uint64) (*Drop, error) {
	if maxSupply == 0 {
		return nil, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindZeroSupply, "max supply must be positive")
	}
	if feeBps > feeCeiling || feeBps > domain.BasisPointsDenominator {
		return nil, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindInvalidFeeBps, "fee rate exceeds ceiling")
	}
	return &Drop{
		CreatorID:          creatorID,
		ContentFingerprint: content,
		MaxSupply:          maxSupply,
		UnitPrice:          unitPrice,
		FeeBps:             feeBps,
		PerWalletCap:       perWalletCap,
		ScheduledAt:        height,
		Phases:             make([]Phase, phaseCapacity),
	}, nil
}

// RequireNotFinalized gates configuration mutations.
func (d *Drop) RequireNotFinalized() error {
	if d.Finalized {
		return dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindDropAlreadyFinalized, "drop configuration is finalized")
	}
	return nil
}

// FreePhaseSlot scans first-fit for an unconfigured slot.
func (d *Drop) FreePhaseSlot() (domain.PhaseIndex, bool) {
	for i := range d.Phases {
		if !d.Phases[i].Configured {
			return domain.PhaseIndex(i), true
		}
	}
	return 0, false
}

// PhaseAt returns the configured phase at index, or PhaseNotFound. An
// allocated-but-unconfigured slot is indistinguishable from an out-of-range
// index on purpose.
func (d *Drop) PhaseAt(index domain.PhaseIndex) (*Phase, error) {
	if int(index) >= len(d.Phases) || !d.Phases[index].Configured {
		return nil, dErrors.NewKind(dErrors.CodeNotFound, dErrors.KindPhaseNotFound, "phase slot is not configured")
	}
	return &d.Phases[index], nil
}

// AddPhase configures the first free slot with validated bounds and returns
// its permanent index.
func (d *Drop) AddPhase(start, end uint64, allowlistOnly bool, root domain.Hash) (domain.PhaseIndex, error) {
	if err := d.RequireNotFinalized(); err != nil {
		return 0, err
	}
	if start >= end {
		return 0, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindInvalidPhaseBounds, "phase start must be before end")
	}
	index, ok := d.FreePhaseSlot()
	if !ok {
		return 0, dErrors.NewKind(dErrors.CodeLimitExceeded, dErrors.KindTooManyPhases, "drop phase capacity exhausted")
	}
	d.Phases[index] = Phase{
		StartHeight:   start,
		EndHeight:     end,
		AllowlistOnly: allowlistOnly,
		AllowlistRoot: root,
		Configured:    true,
	}
	return index, nil
}
