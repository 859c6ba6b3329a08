package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore implements Store using a transactional outbox table. Events
// are written in the same transaction as the domain mutation when the caller
// carries one in context; the outbox worker drains them to Kafka, which is
// the source of truth for downstream indexers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied by deploy tooling; kept here so the table shape lives
// next to the queries.
const Schema = `
CREATE TABLE IF NOT EXISTS activity_outbox (
    id           UUID PRIMARY KEY,
    action       TEXT NOT NULL,
    height       BIGINT NOT NULL,
    payload      JSONB NOT NULL,
    published    BOOLEAN NOT NULL DEFAULT FALSE,
    emitted_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS activity_outbox_unpublished
    ON activity_outbox (emitted_at) WHERE NOT published;
`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activity_outbox (id, action, height, payload, emitted_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.Action), event.Height, payload, event.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

func (s *PostgresStore) UnpublishedBatch(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM activity_outbox
		 WHERE NOT published ORDER BY emitted_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var batch []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}
		batch = append(batch, event)
	}
	return batch, rows.Err()
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	textIDs := make([]string, len(ids))
	for i, id := range ids {
		textIDs[i] = id.String()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE activity_outbox SET published = TRUE WHERE id = ANY($1::uuid[])`, textIDs)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

func (s *PostgresStore) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM activity_outbox WHERE NOT published`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return count, nil
}
