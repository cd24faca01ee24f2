package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	txentity "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/entity"
)

// AccountBalance is one account's aggregated position.
type AccountBalance struct {
	AccountID string          `db:"id" json:"accountId"`
	Name      string          `db:"name" json:"name"`
	Type      string          `db:"type" json:"type"`
	Currency  string          `db:"currency" json:"currency"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
}

// SummaryRepo runs the read-only aggregation queries behind the dashboard.
type SummaryRepo struct {
	db *sqlx.DB
}

func NewSummaryRepo(db *sqlx.DB) *SummaryRepo { return &SummaryRepo{db: db} }

// AccountBalances computes each account's balance as income minus expense.
func (r *SummaryRepo) AccountBalances(ctx context.Context, userID string) ([]AccountBalance, error) {
	const q = `
SELECT a.id, a.name, a.type, a.currency,
       COALESCE(SUM(CASE WHEN t.type='income' THEN t.amount
                         WHEN t.type='expense' THEN -t.amount END), 0) AS balance
  FROM accounts a
  LEFT JOIN transactions t ON t.account_id = a.id
 WHERE a.user_id = $1
 GROUP BY a.id, a.name, a.type, a.currency, a.created_at
 ORDER BY a.created_at`
	balances := []AccountBalance{}
	if err := r.db.SelectContext(ctx, &balances, q, userID); err != nil {
		return nil, err
	}
	return balances, nil
}

// Totals returns the user's overall income and expense sums.
func (r *SummaryRepo) Totals(ctx context.Context, userID string) (income, expense decimal.Decimal, err error) {
	const q = `
SELECT COALESCE(SUM(CASE WHEN type='income' THEN amount ELSE 0 END), 0) AS income,
       COALESCE(SUM(CASE WHEN type='expense' THEN amount ELSE 0 END), 0) AS expense
  FROM transactions WHERE user_id = $1`
	var row struct {
		Income  decimal.Decimal `db:"income"`
		Expense decimal.Decimal `db:"expense"`
	}
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return row.Income, row.Expense, nil
}

// Recent returns the user's latest transactions, newest first.
func (r *SummaryRepo) Recent(ctx context.Context, userID string, limit int) ([]txentity.Transaction, error) {
	const q = `SELECT id, user_id, account_id, type, amount, category, note, occurred_at, created_at
	             FROM transactions WHERE user_id=$1
	            ORDER BY occurred_at DESC LIMIT $2`
	rows := []txentity.Transaction{}
	if err := r.db.SelectContext(ctx, &rows, q, userID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
