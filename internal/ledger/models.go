package ledger

import (
	"dropforge/pkg/domain"
)

// Buckets is the per-drop proceeds record: three pending balances plus
// lifetime totals. The aggregates exist so "never withdraw the same unit
// twice" is observable: Accrued == Withdrawn + sum(pending) holds at all
// times.
type Buckets struct {
	DropID          domain.DropID `json:"drop_id"`
	CreatorPending  uint64        `json:"creator_pending"`
	TreasuryPending uint64        `json:"treasury_pending"`
	FeePending      uint64        `json:"fee_pending"`
	Accrued         uint64        `json:"accrued"`
	Withdrawn       uint64        `json:"withdrawn"`
}

// Pending returns the pending balance for one bucket kind.
func (b *Buckets) Pending(kind domain.BucketKind) uint64 {
	switch kind {
	case domain.BucketCreator:
		return b.CreatorPending
	case domain.BucketTreasury:
		return b.TreasuryPending
	case domain.BucketFee:
		return b.FeePending
	}
	return 0
}

// Drain zeroes one bucket and moves its balance into the withdrawn total,
// returning the drained amount. Draining before the transfer is attempted is
// the whole double-withdrawal defense; callers must not restore the balance
// on transfer failure.
func (b *Buckets) Drain(kind domain.BucketKind) uint64 {
	var amount uint64
	switch kind {
	case domain.BucketCreator:
		amount, b.CreatorPending = b.CreatorPending, 0
	case domain.BucketTreasury:
		amount, b.TreasuryPending = b.TreasuryPending, 0
	case domain.BucketFee:
		amount, b.FeePending = b.FeePending, 0
	}
	b.Withdrawn += amount
	return amount
}

// Split divides a payment total into the three bucket shares. The fee is
// floor(total*feeBps/10000); the treasury takes floor(fee/2) and the fee
// recipient takes the rest of the fee, so the three shares always sum to the
// exact total with no remainder lost.
func Split(total uint64, feeBps uint32) (creatorShare, treasuryShare, feeShare uint64) {
	fee := total / domain.BasisPointsDenominator * uint64(feeBps)
	fee += total % domain.BasisPointsDenominator * uint64(feeBps) / domain.BasisPointsDenominator
	creatorShare = total - fee
	treasuryShare = fee / 2
	feeShare = fee - treasuryShare
	return creatorShare, treasuryShare, feeShare
}

// Accrue credits the three shares of one payment into the pending buckets.
func (b *Buckets) Accrue(total uint64, feeBps uint32) (creatorShare, treasuryShare, feeShare uint64) {
	creatorShare, treasuryShare, feeShare = Split(total, feeBps)
	b.CreatorPending += creatorShare
	b.TreasuryPending += treasuryShare
	b.FeePending += feeShare
	b.Accrued += total
	return creatorShare, treasuryShare, feeShare
}
