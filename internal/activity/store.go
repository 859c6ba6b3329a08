package activity

import (
	"context"

	"github.com/google/uuid"
)

// Store persists activity events and doubles as the transactional outbox for
// the Kafka publisher: events are appended unpublished and the outbox worker
// marks them off once delivered.
type Store interface {
	Append(ctx context.Context, event Event) error
	// UnpublishedBatch returns up to limit events not yet delivered, oldest
	// first.
	UnpublishedBatch(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
	// PendingCount reports outbox depth for metrics.
	PendingCount(ctx context.Context) (int, error)
}
