package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

func TestRedisPendingStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	s := NewRedisPendingStore(rdb, time.Hour)

	item := newPending("a@x.com", 1300)
	require.NoError(t, s.Create(ctx, item))
	require.ErrorIs(t, s.Create(ctx, item), appErr.ErrConflict)

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, item, got)
	require.Equal(t, time.Hour+300*time.Second, mr.TTL("pending:a@x.com"))

	require.NoError(t, s.DeleteByEmail(ctx, "a@x.com"))
	require.NoError(t, s.DeleteByEmail(ctx, "a@x.com"))
	_, err = s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestRedisPendingStoreKeyExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	s := NewRedisPendingStore(rdb, time.Minute)

	require.NoError(t, s.Create(ctx, newPending("a@x.com", 1300)))
	mr.FastForward(6*time.Minute + time.Second)

	_, err := s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestMemoryPendingStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPendingStore(10, time.Hour)

	item := newPending("a@x.com", 1300)
	require.NoError(t, s.Create(ctx, item))
	require.ErrorIs(t, s.Create(ctx, item), appErr.ErrConflict)

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, item, got)

	got.OTPCode = 1
	again, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, 123456, again.OTPCode)

	require.NoError(t, s.DeleteByEmail(ctx, "a@x.com"))
	_, err = s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestMemoryPendingStoreEvictsAfterTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPendingStore(10, 20*time.Millisecond)

	require.NoError(t, s.Create(ctx, newPending("a@x.com", 1300)))
	require.Eventually(t, func() bool {
		_, err := s.FindByEmail(ctx, "a@x.com")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
