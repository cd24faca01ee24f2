package dashboard

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/dashboard/repo"
	txentity "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/entity"
)

const recentLimit = 10

// Store is the narrow aggregation interface the service needs.
type Store interface {
	AccountBalances(ctx context.Context, userID string) ([]repo.AccountBalance, error)
	Totals(ctx context.Context, userID string) (income, expense decimal.Decimal, err error)
	Recent(ctx context.Context, userID string, limit int) ([]txentity.Transaction, error)
}

// Summary is the dashboard payload: balances per account, overall totals,
// and the latest activity.
type Summary struct {
	Accounts     []repo.AccountBalance  `json:"accounts"`
	NetBalance   decimal.Decimal        `json:"netBalance"`
	TotalIncome  decimal.Decimal        `json:"totalIncome"`
	TotalExpense decimal.Decimal        `json:"totalExpense"`
	Recent       []txentity.Transaction `json:"recent"`
}

type Service struct {
	store Store
}

func NewService(db *sqlx.DB) *Service {
	return &Service{store: repo.NewSummaryRepo(db)}
}

func NewServiceWithStore(store Store) *Service { return &Service{store: store} }

// Summary aggregates the user's accounts and recent transactions.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	balances, err := s.store.AccountBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	income, expense, err := s.store.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	recent, err := s.store.Recent(ctx, userID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	net := decimal.Zero
	for _, b := range balances {
		net = net.Add(b.Balance)
	}
	return &Summary{
		Accounts:     balances,
		NetBalance:   net,
		TotalIncome:  income,
		TotalExpense: expense,
		Recent:       recent,
	}, nil
}
