package ledger

import (
	"context"

	"dropforge/pkg/domain"
)

// Store persists per-drop proceeds buckets. Load returns a zeroed record for
// a drop with no accruals yet; the ledger is total over drop IDs. Callers
// serialize read-modify-write per drop via the shared keyed lock.
type Store interface {
	Load(ctx context.Context, id domain.DropID) (*Buckets, error)
	Save(ctx context.Context, b *Buckets) error
}
