package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single income or expense entry against an account.
// Amounts are always positive; the type carries the sign.
type Transaction struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"userId"`
	AccountID  string          `db:"account_id" json:"accountId"`
	Type       string          `db:"type" json:"type"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Category   string          `db:"category" json:"category"`
	Note       string          `db:"note" json:"note,omitempty"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurredAt"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// ValidType reports whether t is income or expense.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}
