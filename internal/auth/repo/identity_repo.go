package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
)

// IdentityRepo provides data access for the new identity system's tables
// (auth_users, auth_sessions). The table namespace is deliberately separate
// from the legacy `users` table.
type IdentityRepo struct {
	db *sqlx.DB
}

func NewIdentityRepo(db *sqlx.DB) *IdentityRepo { return &IdentityRepo{db: db} }

// EnsureTable creates the new-system tables if not exists (idempotent).
func (r *IdentityRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS auth_users (
  id VARCHAR(32) PRIMARY KEY,
  email CITEXT UNIQUE NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  email_verified BOOLEAN NOT NULL DEFAULT false,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS auth_sessions (
  id UUID PRIMARY KEY,
  user_id VARCHAR(32) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// CreateUser inserts a new-system user. The id and email carry unique
// constraints; a violation surfaces as a duplicate-record error, which the
// migration engine reads as "already migrated".
func (r *IdentityRepo) CreateUser(ctx context.Context, u *entity.AuthUser) error {
	const q = `INSERT INTO auth_users (id, email, name, email_verified, password_hash)
	           VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.EmailVerified, u.PasswordHash)
	return translateErr(err)
}

// GetUserByID returns the new-system user or a not-found error.
func (r *IdentityRepo) GetUserByID(ctx context.Context, id string) (*entity.AuthUser, error) {
	const q = `SELECT id, email, name, email_verified, password_hash, created_at
	             FROM auth_users WHERE id=$1`
	var row entity.AuthUser
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

// GetUserByEmail returns the new-system user matched case-insensitively.
func (r *IdentityRepo) GetUserByEmail(ctx context.Context, email string) (*entity.AuthUser, error) {
	const q = `SELECT id, email, name, email_verified, password_hash, created_at
	             FROM auth_users WHERE email=$1`
	var row entity.AuthUser
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

// CreateSession persists a new session with a fresh UUID and the given TTL.
func (r *IdentityRepo) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*entity.Session, error) {
	now := time.Now()
	s := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	const q = `INSERT INTO auth_sessions (id, user_id, created_at, expires_at)
	           VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt); err != nil {
		return nil, translateErr(err)
	}
	return s, nil
}

// GetSession returns the session row or a not-found error. Expiry is
// checked by the caller so absent and expired sessions can be logged apart.
func (r *IdentityRepo) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	const q = `SELECT id, user_id, created_at, expires_at FROM auth_sessions WHERE id=$1`
	var row entity.Session
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

// DeleteSession removes a session; deleting an absent session is not an error.
func (r *IdentityRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id=$1`, id)
	return translateErr(err)
}
