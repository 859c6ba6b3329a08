package ledger

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"dropforge/pkg/domain"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		total    uint64
		feeBps   uint32
		creator  uint64
		treasury uint64
		fee      uint64
	}{
		{"five percent of 3000", 3000, 500, 2850, 75, 75},
		{"odd fee splits remainder to recipient", 1500, 500, 1425, 37, 38},
		{"zero fee rate", 1000, 0, 1000, 0, 0},
		{"full fee rate", 1000, 10000, 0, 500, 500},
		{"tiny amount rounds fee to zero", 19, 500, 19, 0, 0},
		{"one unit fee", 1000, 10, 999, 0, 1},
		{"zero total", 0, 500, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator, treasury, fee := Split(tt.total, tt.feeBps)
			assert.Equal(t, tt.creator, creator)
			assert.Equal(t, tt.treasury, treasury)
			assert.Equal(t, tt.fee, fee)
		})
	}
}

// TestSplitExactness asserts no remainder is ever lost or invented: the three
// shares always sum back to the exact total, and the two role shares differ
// by at most one unit.
func TestSplitExactness(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("shares sum to total", prop.ForAll(
		func(total uint64, feeBps uint32) bool {
			bps := feeBps % (domain.BasisPointsDenominator + 1)
			creator, treasury, fee := Split(total, bps)
			if creator+treasury+fee != total {
				return false
			}
			if treasury > fee {
				return false
			}
			return fee-treasury <= 1
		},
		gen.UInt64(),
		gen.UInt32(),
	))
	properties.TestingRun(t)
}

func TestBucketsDrain(t *testing.T) {
	b := &Buckets{DropID: 1}
	b.Accrue(3000, 500)
	assert.Equal(t, uint64(3000), b.Accrued)

	amount := b.Drain(domain.BucketCreator)
	assert.Equal(t, uint64(2850), amount)
	assert.Zero(t, b.CreatorPending)
	assert.Equal(t, uint64(2850), b.Withdrawn)

	// Second drain yields nothing; the balance moved out exactly once.
	assert.Zero(t, b.Drain(domain.BucketCreator))
	assert.Equal(t, uint64(2850), b.Withdrawn)

	b.Drain(domain.BucketTreasury)
	b.Drain(domain.BucketFee)
	assert.Equal(t, b.Accrued, b.Withdrawn)
}
