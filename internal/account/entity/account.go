package entity

import "time"

// Valid account types.
const (
	TypeBank       = "bank"
	TypeCash       = "cash"
	TypeWallet     = "wallet"
	TypeCreditCard = "credit_card"
)

// Account is a money container owned by a single user.
type Account struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ValidType reports whether t is one of the supported account types.
func ValidType(t string) bool {
	switch t {
	case TypeBank, TypeCash, TypeWallet, TypeCreditCard:
		return true
	}
	return false
}
