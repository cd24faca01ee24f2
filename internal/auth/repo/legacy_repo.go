package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
)

// uniqueViolation is the Postgres error code raised when an insert hits a
// unique constraint. Concurrent migrations rely on it to detect the loser.
const uniqueViolation = "23505"

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return common.ErrDuplicate
	}
	return err
}

// LegacyUserRepo provides data access for the legacy `users` table using sqlx.
type LegacyUserRepo struct {
	db *sqlx.DB
}

func NewLegacyUserRepo(db *sqlx.DB) *LegacyUserRepo { return &LegacyUserRepo{db: db} }

// EnsureTable creates the legacy users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *LegacyUserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(32) PRIMARY KEY,
  email CITEXT UNIQUE NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  migrated BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new legacy user row.
func (r *LegacyUserRepo) Create(ctx context.Context, u *entity.LegacyUser) error {
	const q = `INSERT INTO users (id, email, name, password_hash, migrated)
	           VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.PasswordHash, u.Migrated)
	return translateErr(err)
}

// GetByEmail returns a user matched by email (case-insensitive due to citext)
// or a not-found error.
func (r *LegacyUserRepo) GetByEmail(ctx context.Context, email string) (*entity.LegacyUser, error) {
	const q = `SELECT id, email, name, password_hash, migrated, created_at, updated_at
	             FROM users WHERE email=$1`
	var row entity.LegacyUser
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

// GetByID fetches a full legacy user row.
func (r *LegacyUserRepo) GetByID(ctx context.Context, id string) (*entity.LegacyUser, error) {
	const q = `SELECT id, email, name, password_hash, migrated, created_at, updated_at
	             FROM users WHERE id=$1`
	var row entity.LegacyUser
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

// MarkMigrated flips the advisory migrated flag. It is set at most once;
// repeated calls are harmless.
func (r *LegacyUserRepo) MarkMigrated(ctx context.Context, id string) error {
	const q = `UPDATE users SET migrated=true, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return translateErr(err)
}
