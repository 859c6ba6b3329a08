package creator

import (
	"context"

	"dropforge/pkg/domain"
)

// Store persists creator records. Implementations assign IDs monotonically
// starting at 1 and enforce both the unique account index and the global
// creator ceiling, returning sentinel errors for violations
// (sentinel.ErrConflict, sentinel.ErrCapacity, sentinel.ErrNotFound).
type Store interface {
	// Create assigns the next ID to c and persists it, failing if the
	// account is already registered or the ceiling is reached.
	Create(ctx context.Context, c *Creator) error
	FindByID(ctx context.Context, id domain.CreatorID) (*Creator, error)
	FindByAccount(ctx context.Context, account domain.Account) (*Creator, error)
	// Save overwrites an existing record (handle updates, deactivation,
	// counter bumps). The record must already exist.
	Save(ctx context.Context, c *Creator) error
	Count(ctx context.Context) (uint64, error)
}
