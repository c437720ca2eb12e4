// Package testutil provides shared helpers for store-backed tests.
// SQLite helpers always run (the database lives in memory). Postgres helpers
// skip automatically when TEST_DATABASE_URL is not set, so the suite never
// needs a running server.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/trip-journal/internal/store"
)

// NewStore opens a fresh in-memory SQLite store with all migrations applied.
// Every call gets its own database; nothing is shared between tests.
// The store is closed automatically when the test finishes.
func NewStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("testutil.NewStore: open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if _, err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("testutil.NewStore: migrate: %v", err)
	}
	return st
}

// NewPostgresStore opens a store against TEST_DATABASE_URL with migrations
// applied. The test is skipped when TEST_DATABASE_URL is not set.
func NewPostgresStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := requireDSN(t)

	st, err := store.Open(context.Background(), store.DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("testutil.NewPostgresStore: open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if _, err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("testutil.NewPostgresStore: migrate: %v", err)
	}
	return st
}

// NewSQLDB opens a *sql.DB connected to TEST_DATABASE_URL using the pgx
// database/sql driver. Use it to drive goose directly.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// requireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
