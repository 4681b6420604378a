package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/otpauth/internal/config"
	"github.com/xxxsen/otpauth/internal/db"
)

// OpenTestDB returns a migrated database. Postgres is used when TEST_DB_HOST
// is set, an in-memory sqlite database otherwise.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		cfg = config.DatabaseConfig{
			Driver:   "postgres",
			Host:     host,
			Port:     5432,
			User:     "otpauth",
			Password: "otpauth_pass",
			DBName:   "otpauth_test",
			SSLMode:  "disable",
		}
	}
	ctx := context.Background()
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() {
		if cfg.Driver == "postgres" {
			_, _ = conn.Exec("DELETE FROM pending_registrations")
			_, _ = conn.Exec("DELETE FROM accounts")
		}
		_ = conn.Close()
	})
	return conn
}
