package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/account/entity"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
)

type fakeStore struct {
	accounts map[string]*entity.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[string]*entity.Account{}}
}

func (f *fakeStore) Create(_ context.Context, a *entity.Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id, userID string) (*entity.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]entity.Account, error) {
	var out []entity.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, a *entity.Account) error {
	ex, ok := f.accounts[a.ID]
	if !ok || ex.UserID != a.UserID {
		return common.ErrNotFound
	}
	ex.Name, ex.Type, ex.Currency = a.Name, a.Type, a.Currency
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, id, userID string) (bool, error) {
	a, ok := f.accounts[id]
	return ok && a.UserID == userID, nil
}

func TestCreate_DefaultsCurrencyToUSD(t *testing.T) {
	svc := NewServiceWithStore(newFakeStore())

	a, err := svc.Create(context.Background(), "u1", "Checking", entity.TypeBank, "")

	require.NoError(t, err)
	assert.Equal(t, "USD", a.Currency)
	assert.NotEmpty(t, a.ID)
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc := NewServiceWithStore(newFakeStore())

	_, err := svc.Create(context.Background(), "u1", "Stash", "mattress", "USD")

	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreate_UppercasesCurrency(t *testing.T) {
	svc := NewServiceWithStore(newFakeStore())

	a, err := svc.Create(context.Background(), "u1", "Cash", entity.TypeCash, "eur")

	require.NoError(t, err)
	assert.Equal(t, "EUR", a.Currency)
}

func TestGet_ScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewServiceWithStore(store)

	a, err := svc.Create(context.Background(), "u1", "Checking", entity.TypeBank, "USD")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Get(context.Background(), a.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewServiceWithStore(newFakeStore())

	_, err := svc.Update(context.Background(), "missing", "u1", "New name", entity.TypeBank, "USD")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_AppliesChanges(t *testing.T) {
	svc := NewServiceWithStore(newFakeStore())

	a, err := svc.Create(context.Background(), "u1", "Checking", entity.TypeBank, "USD")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), a.ID, "u1", "Joint checking", entity.TypeBank, "eur")
	require.NoError(t, err)
	assert.Equal(t, "Joint checking", updated.Name)
	assert.Equal(t, "EUR", updated.Currency)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewServiceWithStore(store)

	a, err := svc.Create(context.Background(), "u1", "Checking", entity.TypeBank, "USD")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), a.ID, "intruder"), ErrNotFound)
	assert.NoError(t, svc.Delete(context.Background(), a.ID, "u1"))
	assert.Empty(t, store.accounts)
}
