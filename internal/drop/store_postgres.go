package drop

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

// PostgresStore persists drops with the phase array as a JSONB column. The
// array is small and bounded (default capacity 8) and always read and written
// whole under the drop's lock, so a child table would only add join noise.
type PostgresStore struct {
	db      *sql.DB
	ceiling uint64
}

func NewPostgres(db *sql.DB, ceiling uint64) *PostgresStore {
	return &PostgresStore{db: db, ceiling: ceiling}
}

const SchemaDrops = `
CREATE TABLE IF NOT EXISTS drops (
    id             BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1) PRIMARY KEY,
    creator_id     BIGINT NOT NULL,
    content        BYTEA NOT NULL,
    label          BYTEA,
    max_supply     BIGINT NOT NULL,
    minted_supply  BIGINT NOT NULL DEFAULT 0,
    unit_price     BIGINT NOT NULL,
    fee_bps        INT NOT NULL,
    per_wallet_cap BIGINT NOT NULL DEFAULT 0,
    paused         BOOLEAN NOT NULL DEFAULT FALSE,
    finalized      BOOLEAN NOT NULL DEFAULT FALSE,
    scheduled_at   BIGINT NOT NULL,
    phases         JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS drops_by_creator ON drops (creator_id);
`

func (s *PostgresStore) Create(ctx context.Context, d *Drop) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.ceiling > 0 {
		var count uint64
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM drops`).Scan(&count); err != nil {
			return fmt.Errorf("count drops: %w", err)
		}
		if count >= s.ceiling {
			return sentinel.ErrCapacity
		}
	}

	phases, err := json.Marshal(d.Phases)
	if err != nil {
		return fmt.Errorf("marshal phases: %w", err)
	}
	var id uint64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO drops (creator_id, content, label, max_supply, minted_supply, unit_price,
		                    fee_bps, per_wallet_cap, paused, finalized, scheduled_at, phases)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		uint64(d.CreatorID), d.ContentFingerprint.Bytes(), d.LabelFingerprint.Bytes(),
		int64(d.MaxSupply), int64(d.MintedSupply), int64(d.UnitPrice),
		d.FeeBps, int64(d.PerWalletCap), d.Paused, d.Finalized, int64(d.ScheduledAt), phases,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert drop: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	d.ID = domain.DropID(id)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DropID) (*Drop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, creator_id, content, label, max_supply, minted_supply, unit_price,
		        fee_bps, per_wallet_cap, paused, finalized, scheduled_at, phases
		 FROM drops WHERE id = $1`, uint64(id))

	var (
		d           Drop
		dropID      uint64
		creatorID   uint64
		content     []byte
		label       []byte
		maxSupply   int64
		minted      int64
		price       int64
		perWallet   int64
		scheduledAt int64
		phases      []byte
	)
	err := row.Scan(&dropID, &creatorID, &content, &label, &maxSupply, &minted, &price,
		&d.FeeBps, &perWallet, &d.Paused, &d.Finalized, &scheduledAt, &phases)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan drop: %w", err)
	}
	d.ID = domain.DropID(dropID)
	d.CreatorID = domain.CreatorID(creatorID)
	copy(d.ContentFingerprint[:], content)
	copy(d.LabelFingerprint[:], label)
	d.MaxSupply = uint64(maxSupply)
	d.MintedSupply = uint64(minted)
	d.UnitPrice = uint64(price)
	d.PerWalletCap = uint64(perWallet)
	d.ScheduledAt = uint64(scheduledAt)
	if err := json.Unmarshal(phases, &d.Phases); err != nil {
		return nil, fmt.Errorf("unmarshal phases: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) Save(ctx context.Context, d *Drop) error {
	phases, err := json.Marshal(d.Phases)
	if err != nil {
		return fmt.Errorf("marshal phases: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE drops
		 SET content = $2, label = $3, minted_supply = $4, paused = $5, finalized = $6, phases = $7
		 WHERE id = $1 AND creator_id = $8`,
		uint64(d.ID), d.ContentFingerprint.Bytes(), d.LabelFingerprint.Bytes(),
		int64(d.MintedSupply), d.Paused, d.Finalized, phases, uint64(d.CreatorID),
	)
	if err != nil {
		return fmt.Errorf("update drop: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByCreator(ctx context.Context, creatorID domain.CreatorID) ([]domain.DropID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM drops WHERE creator_id = $1 ORDER BY id`, uint64(creatorID))
	if err != nil {
		return nil, fmt.Errorf("list drops: %w", err)
	}
	defer rows.Close()

	var ids []domain.DropID
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan drop id: %w", err)
		}
		ids = append(ids, domain.DropID(id))
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM drops`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drops: %w", err)
	}
	return count, nil
}
