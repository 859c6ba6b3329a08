package creator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"dropforge/pkg/domain"
	"dropforge/pkg/platform/sentinel"
)

// PostgresStore persists creators. The id comes from a sequence so allocation
// is monotonic across processes; the unique account index and the ceiling are
// enforced inside one transaction.
type PostgresStore struct {
	db      *sql.DB
	ceiling uint64
}

func NewPostgres(db *sql.DB, ceiling uint64) *PostgresStore {
	return &PostgresStore{db: db, ceiling: ceiling}
}

const SchemaCreators = `
CREATE TABLE IF NOT EXISTS creators (
    id            BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1) PRIMARY KEY,
    account       BYTEA NOT NULL UNIQUE,
    handle        BYTEA NOT NULL,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    drops_created BIGINT NOT NULL DEFAULT 0,
    units_minted  BIGINT NOT NULL DEFAULT 0,
    registered_at BIGINT NOT NULL
);
`

func (s *PostgresStore) Create(ctx context.Context, c *Creator) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.ceiling > 0 {
		var count uint64
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM creators`).Scan(&count); err != nil {
			return fmt.Errorf("count creators: %w", err)
		}
		if count >= s.ceiling {
			return sentinel.ErrCapacity
		}
	}

	var id uint64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO creators (account, handle, active, registered_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Account.Bytes(), c.HandleFingerprint.Bytes(), c.Active, int64(c.RegisteredAt),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert creator: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.ID = domain.CreatorID(id)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CreatorID) (*Creator, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, account, handle, active, drops_created, units_minted, registered_at
		 FROM creators WHERE id = $1`, uint64(id)))
}

func (s *PostgresStore) FindByAccount(ctx context.Context, account domain.Account) (*Creator, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, account, handle, active, drops_created, units_minted, registered_at
		 FROM creators WHERE account = $1`, account.Bytes()))
}

func (s *PostgresStore) Save(ctx context.Context, c *Creator) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE creators
		 SET handle = $2, active = $3, drops_created = $4, units_minted = $5
		 WHERE id = $1 AND account = $6`,
		uint64(c.ID), c.HandleFingerprint.Bytes(), c.Active,
		int64(c.DropsCreated), int64(c.UnitsMinted), c.Account.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("update creator: %w", err)
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

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM creators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count creators: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Creator, error) {
	var (
		c            Creator
		id           uint64
		account      []byte
		handle       []byte
		dropsCreated int64
		unitsMinted  int64
		registeredAt int64
	)
	err := row.Scan(&id, &account, &handle, &c.Active, &dropsCreated, &unitsMinted, &registeredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan creator: %w", err)
	}
	c.ID = domain.CreatorID(id)
	copy(c.Account[:], account)
	copy(c.HandleFingerprint[:], handle)
	c.DropsCreated = uint64(dropsCreated)
	c.UnitsMinted = uint64(unitsMinted)
	c.RegisteredAt = uint64(registeredAt)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
