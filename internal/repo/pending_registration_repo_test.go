package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/otpauth/internal/model"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
	"github.com/xxxsen/otpauth/internal/testutil"
)

func newPending(email string, expiresAt int64) *model.PendingRegistration {
	return &model.PendingRegistration{
		Email:        email,
		Name:         "A",
		PasswordHash: "hash",
		OTPCode:      123456,
		ExpiresAt:    expiresAt,
		Ctime:        expiresAt - 300,
	}
}

func TestPendingRegistrationRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewPendingRegistrationRepo(testutil.OpenTestDB(t))

	item := newPending("a@x.com", 1300)
	require.NoError(t, r.Create(ctx, item))

	got, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, item, got)

	require.ErrorIs(t, r.Create(ctx, newPending("a@x.com", 2000)), appErr.ErrConflict)

	require.NoError(t, r.DeleteByEmail(ctx, "a@x.com"))
	require.NoError(t, r.DeleteByEmail(ctx, "a@x.com"))
	_, err = r.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestPendingRegistrationRepoDeleteExpiredBefore(t *testing.T) {
	ctx := context.Background()
	r := NewPendingRegistrationRepo(testutil.OpenTestDB(t))

	require.NoError(t, r.Create(ctx, newPending("old@x.com", 100)))
	require.NoError(t, r.Create(ctx, newPending("new@x.com", 1000)))

	n, err := r.DeleteExpiredBefore(ctx, 500)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = r.FindByEmail(ctx, "old@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = r.FindByEmail(ctx, "new@x.com")
	require.NoError(t, err)
}
