package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/entity"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
)

// AccountRepo provides data access for the accounts table using sqlx.
// Every query is scoped by user_id so ownership is enforced at the SQL level.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// EnsureTable creates the accounts table if not exists (idempotent).
func (r *AccountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
  id VARCHAR(32) PRIMARY KEY,
  user_id VARCHAR(32) NOT NULL,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  currency VARCHAR(8) NOT NULL DEFAULT 'USD',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	const q = `INSERT INTO accounts (id, user_id, name, type, currency)
	           VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.Name, a.Type, a.Currency)
	return err
}

// GetByID returns the account only when it belongs to userID.
func (r *AccountRepo) GetByID(ctx context.Context, id, userID string) (*entity.Account, error) {
	const q = `SELECT id, user_id, name, type, currency, created_at, updated_at
	             FROM accounts WHERE id=$1 AND user_id=$2`
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *AccountRepo) ListByUser(ctx context.Context, userID string) ([]entity.Account, error) {
	const q = `SELECT id, user_id, name, type, currency, created_at, updated_at
	             FROM accounts WHERE user_id=$1 ORDER BY created_at`
	accounts := []entity.Account{}
	if err := r.db.SelectContext(ctx, &accounts, q, userID); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Exists reports whether the account exists and belongs to userID.
func (r *AccountRepo) Exists(ctx context.Context, id, userID string) (bool, error) {
	const q = `SELECT 1 FROM accounts WHERE id=$1 AND user_id=$2`
	var one int
	if err := r.db.GetContext(ctx, &one, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update renames or retypes an account owned by userID.
func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	const q = `UPDATE accounts SET name=$3, type=$4, currency=$5, updated_at=NOW()
	            WHERE id=$1 AND user_id=$2`
	res, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.Name, a.Type, a.Currency)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
