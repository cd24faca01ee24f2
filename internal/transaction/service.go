package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	accountrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/entity"
	transactionrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/pkg/utilities"
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrAccountNotFound = errors.New("account not found")
	ErrNotFound        = errors.New("transaction not found")
)

// Store is the narrow repository interface the service needs.
type Store interface {
	Create(ctx context.Context, t *entity.Transaction) error
	ListByUser(ctx context.Context, userID, accountID string, limit int) ([]entity.Transaction, error)
	GetByID(ctx context.Context, id, userID string) (*entity.Transaction, error)
	Delete(ctx context.Context, id, userID string) error
}

// AccountVerifier checks that a transaction's target account exists and
// belongs to the caller.
type AccountVerifier interface {
	Exists(ctx context.Context, id, userID string) (bool, error)
}

// Service owns transaction rules: type whitelist, positive amounts, and
// account ownership.
type Service struct {
	store    Store
	accounts AccountVerifier
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		store:    transactionrepo.NewTransactionRepo(db),
		accounts: accountrepo.NewAccountRepo(db),
	}
}

func NewServiceWithStores(store Store, accounts AccountVerifier) *Service {
	return &Service{store: store, accounts: accounts}
}

func (s *Service) Create(ctx context.Context, userID, accountID, txType string, amount decimal.Decimal, category, note string, occurredAt time.Time) (*entity.Transaction, error) {
	if !entity.ValidType(txType) {
		return nil, ErrInvalidType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	ok, err := s.accounts.Exists(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}
	if !ok {
		return nil, ErrAccountNotFound
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	t := &entity.Transaction{
		ID:         utilities.NewSnowflakeID(),
		UserID:     userID,
		AccountID:  accountID,
		Type:       txType,
		Amount:     amount,
		Category:   strings.TrimSpace(category),
		Note:       strings.TrimSpace(note),
		OccurredAt: occurredAt,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*entity.Transaction, error) {
	t, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID, accountID string, limit int) ([]entity.Transaction, error) {
	return s.store.ListByUser(ctx, userID, accountID, limit)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
