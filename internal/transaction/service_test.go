package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/transaction/entity"
)

type fakeStore struct {
	txs map[string]*entity.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: map[string]*entity.Transaction{}}
}

func (f *fakeStore) Create(_ context.Context, t *entity.Transaction) error {
	cp := *t
	f.txs[t.ID] = &cp
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID, accountID string, _ int) ([]entity.Transaction, error) {
	var out []entity.Transaction
	for _, t := range f.txs {
		if t.UserID != userID {
			continue
		}
		if accountID != "" && t.AccountID != accountID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id, userID string) (*entity.Transaction, error) {
	t, ok := f.txs[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	t, ok := f.txs[id]
	if !ok || t.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

type fakeVerifier struct {
	owned map[string]string // account id -> owner
}

func (f fakeVerifier) Exists(_ context.Context, id, userID string) (bool, error) {
	return f.owned[id] == userID, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	svc := NewServiceWithStores(store, fakeVerifier{owned: map[string]string{"acc-1": "u1"}})
	return svc, store
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "u1", "acc-1", "transfer", decimal.NewFromInt(10), "food", "", time.Time{})

	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "u1", "acc-1", entity.TypeExpense, decimal.Zero, "food", "", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(context.Background(), "u1", "acc-1", entity.TypeExpense, decimal.NewFromInt(-5), "food", "", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreate_RejectsForeignAccount(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "intruder", "acc-1", entity.TypeExpense, decimal.NewFromInt(5), "food", "", time.Time{})

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreate_DefaultsOccurredAt(t *testing.T) {
	svc, _ := newTestService()

	tx, err := svc.Create(context.Background(), "u1", "acc-1", entity.TypeIncome, decimal.NewFromInt(100), "salary", "", time.Time{})

	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.WithinDuration(t, time.Now(), tx.OccurredAt, time.Minute)
}

func TestCreate_KeepsExplicitOccurredAt(t *testing.T) {
	svc, _ := newTestService()
	when := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tx, err := svc.Create(context.Background(), "u1", "acc-1", entity.TypeExpense, decimal.RequireFromString("12.50"), "food", "lunch", when)

	require.NoError(t, err)
	assert.True(t, tx.OccurredAt.Equal(when))
	assert.Equal(t, "12.5", tx.Amount.String())
}

func TestGet_ScopedToOwner(t *testing.T) {
	svc, _ := newTestService()

	tx, err := svc.Create(context.Background(), "u1", "acc-1", entity.TypeIncome, decimal.NewFromInt(50), "salary", "", time.Time{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), tx.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = svc.Get(context.Background(), tx.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	svc, store := newTestService()

	tx, err := svc.Create(context.Background(), "u1", "acc-1", entity.TypeExpense, decimal.NewFromInt(5), "food", "", time.Time{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), tx.ID, "intruder"), ErrNotFound)
	assert.NoError(t, svc.Delete(context.Background(), tx.ID, "u1"))
	assert.Empty(t, store.txs)
}
