package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/entity"
)

// TransactionRepo provides data access for the transactions table using sqlx.
type TransactionRepo struct {
	db *sqlx.DB
}

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// EnsureTable creates the transactions table if not exists (idempotent).
func (r *TransactionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS transactions (
  id VARCHAR(32) PRIMARY KEY,
  user_id VARCHAR(32) NOT NULL,
  account_id VARCHAR(32) NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC(14,2) NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  note TEXT NOT NULL DEFAULT '',
  occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	const q = `INSERT INTO transactions (id, user_id, account_id, type, amount, category, note, occurred_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.UserID, t.AccountID, t.Type, t.Amount, t.Category, t.Note, t.OccurredAt)
	return err
}

// ListByUser returns the user's most recent transactions, optionally scoped
// to one account. limit caps the result; 0 means the default of 50.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID, accountID string, limit int) ([]entity.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := []entity.Transaction{}
	if accountID != "" {
		const q = `SELECT id, user_id, account_id, type, amount, category, note, occurred_at, created_at
		             FROM transactions WHERE user_id=$1 AND account_id=$2
		            ORDER BY occurred_at DESC LIMIT $3`
		if err := r.db.SelectContext(ctx, &rows, q, userID, accountID, limit); err != nil {
			return nil, err
		}
		return rows, nil
	}
	const q = `SELECT id, user_id, account_id, type, amount, category, note, occurred_at, created_at
	             FROM transactions WHERE user_id=$1
	            ORDER BY occurred_at DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, q, userID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id, userID string) (*entity.Transaction, error) {
	const q = `SELECT id, user_id, account_id, type, amount, category, note, occurred_at, created_at
	             FROM transactions WHERE id=$1 AND user_id=$2`
	var row entity.Transaction
	if err := r.db.GetContext(ctx, &row, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=$1 AND user_id=$2`, id, userID)
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
