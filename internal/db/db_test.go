package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/otpauth/internal/config"
)

func TestOpenAndMigrateSqlite(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, ApplyMigrations(ctx, conn))
	// idempotent
	require.NoError(t, ApplyMigrations(ctx, conn))

	var count int
	require.NoError(t, conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM accounts"))
	require.Zero(t, count)
	require.NoError(t, conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM pending_registrations"))
	require.Zero(t, count)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
}
