package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/entity"
	accountrepo "github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/repo"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/pkg/utilities"
)

var (
	ErrInvalidType = errors.New("invalid account type")
	ErrNotFound    = errors.New("account not found")
)

// Store is the narrow repository interface the service needs.
type Store interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id, userID string) (*entity.Account, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	Delete(ctx context.Context, id, userID string) error
	Exists(ctx context.Context, id, userID string) (bool, error)
}

// Service owns account lifecycle rules: type whitelist, currency default,
// per-user ownership.
type Service struct {
	store Store
}

func NewService(db *sqlx.DB) *Service {
	return &Service{store: accountrepo.NewAccountRepo(db)}
}

func NewServiceWithStore(store Store) *Service { return &Service{store: store} }

func (s *Service) Create(ctx context.Context, userID, name, accountType, currency string) (*entity.Account, error) {
	if !entity.ValidType(accountType) {
		return nil, ErrInvalidType
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	a := &entity.Account{
		ID:       utilities.NewSnowflakeID(),
		UserID:   userID,
		Name:     strings.TrimSpace(name),
		Type:     accountType,
		Currency: currency,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*entity.Account, error) {
	a, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]entity.Account, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id, userID, name, accountType, currency string) (*entity.Account, error) {
	if !entity.ValidType(accountType) {
		return nil, ErrInvalidType
	}
	a := &entity.Account{
		ID:       id,
		UserID:   userID,
		Name:     strings.TrimSpace(name),
		Type:     accountType,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
	if err := s.store.Update(ctx, a); err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
