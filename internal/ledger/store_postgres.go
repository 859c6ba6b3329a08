package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dropforge/pkg/domain"
)

// PostgresStore keeps one row per drop, upserted whole. Amounts are stored
// as BIGINT; the service never accrues past uint63 in practice because unit
// prices and supplies are bounded upstream.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const SchemaProceeds = `
CREATE TABLE IF NOT EXISTS proceeds (
    drop_id          BIGINT PRIMARY KEY,
    creator_pending  BIGINT NOT NULL DEFAULT 0,
    treasury_pending BIGINT NOT NULL DEFAULT 0,
    fee_pending      BIGINT NOT NULL DEFAULT 0,
    accrued          BIGINT NOT NULL DEFAULT 0,
    withdrawn        BIGINT NOT NULL DEFAULT 0
);
`

func (s *PostgresStore) Load(ctx context.Context, id domain.DropID) (*Buckets, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT creator_pending, treasury_pending, fee_pending, accrued, withdrawn
		 FROM proceeds WHERE drop_id = $1`, uint64(id))

	b := Buckets{DropID: id}
	var creatorP, treasuryP, feeP, accrued, withdrawn int64
	err := row.Scan(&creatorP, &treasuryP, &feeP, &accrued, &withdrawn)
	if errors.Is(err, sql.ErrNoRows) {
		return &b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan proceeds: %w", err)
	}
	b.CreatorPending = uint64(creatorP)
	b.TreasuryPending = uint64(treasuryP)
	b.FeePending = uint64(feeP)
	b.Accrued = uint64(accrued)
	b.Withdrawn = uint64(withdrawn)
	return &b, nil
}

func (s *PostgresStore) Save(ctx context.Context, b *Buckets) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO proceeds (drop_id, creator_pending, treasury_pending, fee_pending, accrued, withdrawn)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (drop_id) DO UPDATE
		 SET creator_pending = EXCLUDED.creator_pending,
		     treasury_pending = EXCLUDED.treasury_pending,
		     fee_pending = EXCLUDED.fee_pending,
		     accrued = EXCLUDED.accrued,
		     withdrawn = EXCLUDED.withdrawn`,
		uint64(b.DropID), int64(b.CreatorPending), int64(b.TreasuryPending),
		int64(b.FeePending), int64(b.Accrued), int64(b.Withdrawn),
	)
	if err != nil {
		return fmt.Errorf("upsert proceeds: %w", err)
	}
	return nil
}
