package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/common"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func legacyUserColumns() []string {
	return []string{"id", "email", "name", "password_hash", "migrated", "created_at", "updated_at"}
}

func TestLegacyRepo_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLegacyUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows(legacyUserColumns()).
			AddRow("u1", "jane@x.com", "Jane", "hash", false, now, now))

	u, err := r.GetByEmail(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.False(t, u.Migrated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLegacyRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLegacyUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(legacyUserColumns()))

	_, err := r.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLegacyRepo_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLegacyUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "jane@x.com", "Jane", "hash", false).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := r.Create(context.Background(), &entity.LegacyUser{
		ID: "u1", Email: "jane@x.com", Name: "Jane", PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, common.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLegacyRepo_MarkMigrated(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLegacyUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET migrated=true")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.MarkMigrated(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
