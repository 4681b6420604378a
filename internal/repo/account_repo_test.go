package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/otpauth/internal/model"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
	"github.com/xxxsen/otpauth/internal/testutil"
)

func TestAccountRepoCreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewAccountRepo(testutil.OpenTestDB(t))

	account := &model.Account{ID: "acc-1", Name: "A", Email: "a@x.com", PasswordHash: "hash", Ctime: 10, Mtime: 10}
	require.NoError(t, r.Create(ctx, account))

	byEmail, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, account, byEmail)

	byID, err := r.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)

	_, err = r.FindByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestAccountRepoDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewAccountRepo(testutil.OpenTestDB(t))

	require.NoError(t, r.Create(ctx, &model.Account{ID: "acc-1", Name: "A", Email: "a@x.com", PasswordHash: "h"}))
	err := r.Create(ctx, &model.Account{ID: "acc-2", Name: "B", Email: "a@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestAccountRepoPostgresConflictMapping(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()
	r := NewAccountRepo(sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectExec(`INSERT INTO accounts .*\$6`).
		WillReturnError(&pq.Error{Code: "23505"})

	err = r.Create(context.Background(), &model.Account{ID: "acc-1", Email: "a@x.com"})
	require.ErrorIs(t, err, appErr.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoPostgresNotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()
	r := NewAccountRepo(sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE .*email.*\$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err = r.FindByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
