package domain

import (
	"strconv"

	dErrors "dropforge/pkg/domain-errors"
)

// CreatorID identifies a creator record. IDs are assigned monotonically by the
// creator registry starting at 1; the zero value means "absent" and is never
// allocated.
type CreatorID uint64

// DropID identifies a drop record. Same allocation rules as CreatorID.
type DropID uint64

// PhaseIndex is the ordinal of a phase slot inside a drop's fixed-capacity
// phase array. A slot index is the phase's permanent identity: slots are
// allocated first-fit and never reused or compacted.
type PhaseIndex uint8

func (id CreatorID) IsNil() bool { return id == 0 }
func (id DropID) IsNil() bool    { return id == 0 }

func (id CreatorID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id DropID) String() string    { return strconv.FormatUint(uint64(id), 10) }

// ParseCreatorID validates a creator ID at trust boundaries (URL params,
// request bodies). Zero is rejected because it is the reserved absent value.
func ParseCreatorID(s string) (CreatorID, error) {
	v, err := parseID(s, "creator id")
	return CreatorID(v), err
}

// ParseDropID validates a drop ID at trust boundaries.
func ParseDropID(s string) (DropID, error) {
	v, err := parseID(s, "drop id")
	return DropID(v), err
}

// ParsePhaseIndex validates a phase slot ordinal.
func ParsePhaseIndex(s string) (PhaseIndex, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "phase index must be a small non-negative integer")
	}
	return PhaseIndex(v), nil
}

func parseID(s, what string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" must be a positive integer")
	}
	if v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" 0 is reserved")
	}
	return v, nil
}

// BucketKind names one of the three per-drop proceeds buckets.
type BucketKind string

const (
	BucketCreator  BucketKind = "creator"
	BucketTreasury BucketKind = "treasury"
	BucketFee      BucketKind = "fee"
)

func (k BucketKind) IsValid() bool {
	switch k {
	case BucketCreator, BucketTreasury, BucketFee:
		return true
	}
	return false
}

func (k BucketKind) String() string { return string(k) }

// ParseBucketKind validates a bucket kind from a request.
func ParseBucketKind(s string) (BucketKind, error) {
	k := BucketKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown bucket kind: "+s)
	}
	return k, nil
}

// BasisPointsDenominator is the fee-rate denominator: a FeeBps of 10000 means
// the whole payment.
const BasisPointsDenominator = 10_000
