package drop

import (
	"context"

	"dropforge/pkg/domain"
)

// Store persists drops with their embedded phase arrays. Implementations
// assign IDs monotonically starting at 1 and enforce the global drop ceiling
// (sentinel.ErrCapacity). Mutations go through whole-record Save: callers
// serialize per drop via the shared keyed lock, so read-modify-write is safe.
type Store interface {
	Create(ctx context.Context, d *Drop) error
	FindByID(ctx context.Context, id domain.DropID) (*Drop, error)
	Save(ctx context.Context, d *Drop) error
	ListByCreator(ctx context.Context, creatorID domain.CreatorID) ([]domain.DropID, error)
	Count(ctx context.Context) (uint64, error)
}
