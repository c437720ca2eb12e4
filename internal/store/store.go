// Package store is the persistent store adapter. It opens the local
// relational database (SQLite on device, Postgres when configured), applies
// migrations, runs transactions, and maps driver errors onto the domain error
// taxonomy. Repositories never touch database/sql directly; they receive a
// Querier from this package.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-journal/migrations"
)

// Driver names a supported database engine.
type Driver string

const (
	// DriverSQLite is the on-device store.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres is used for desktop/server installs and integration tests.
	DriverPostgres Driver = "postgres"
)

// ParseDriver validates a driver name from configuration.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverSQLite, DriverPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("store: unknown driver %q (want sqlite or postgres)", s)
	}
}

// Querier is the subset of database/sql used by repositories.
// Both *Store and the transaction handle passed to WithTx satisfy it.
// Queries are written with "?" placeholders and rebound per driver.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a connection handle to the journal database.
type Store struct {
	db     *sql.DB
	driver Driver
	pool   *pgxpool.Pool // non-nil for DriverPostgres
}

// Open connects to the database for driver using dsn and verifies it is
// reachable. Connection failures are reported as domain.ErrStoreUnavailable.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		db, err := sql.Open("sqlite3", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("store.Open: %w", Classify(err))
		}
		// SQLite allows one writer; a single connection also keeps
		// ":memory:" databases from splitting across connections.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("store.Open: ping: %w", Classify(err))
		}
		return &Store{db: db, driver: driver}, nil

	case DriverPostgres:
		// pgxpool.New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("store.Open: %w", Classify(err))
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("store.Open: ping: %w", Classify(err))
		}
		return &Store{db: stdlib.OpenDBFromPool(pool), driver: driver, pool: pool}, nil

	default:
		return nil, fmt.Errorf("store.Open: unknown driver %q", driver)
	}
}

// New wraps an already-open *sql.DB. The caller keeps ownership of db.
func New(db *sql.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Driver reports which engine the store is connected to.
func (s *Store) Driver() Driver { return s.driver }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return Classify(err)
	}
	return nil
}

// Migrate applies all pending migrations and returns how many were applied.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	dialect := goose.DialectSQLite3
	if s.driver == DriverPostgres {
		dialect = goose.DialectPostgres
	}
	provider, err := goose.NewProvider(dialect, s.db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("store.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("store.Migrate: %w", Classify(err))
	}
	return len(results), nil
}

func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, rebind(s.driver, query), args...)
}

func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, rebind(s.driver, query), args...)
}

func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, rebind(s.driver, query), args...)
}

// tx adapts *sql.Tx to Querier with placeholder rebinding.
type tx struct {
	tx     *sql.Tx
	driver Driver
}

func (t *tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.driver, query), args...)
}

func (t *tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, rebind(t.driver, query), args...)
}

func (t *tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, rebind(t.driver, query), args...)
}

// WithTx begins a transaction, runs fn with a transactional Querier, and
// commits on success or rolls back on error or panic. Panics are rethrown.
// Errors from the driver are classified; errors returned by fn pass through
// unchanged so callers keep their wrapping.
//
// Inside fn, use only the Querier passed in: on SQLite the store holds a
// single connection and a query on the Store itself would wait for the
// transaction to finish.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store.WithTx: begin: %w", Classify(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		if cerr := sqlTx.Commit(); cerr != nil {
			err = fmt.Errorf("store.WithTx: commit: %w", Classify(cerr))
		}
	}()

	return fn(ctx, &tx{tx: sqlTx, driver: s.driver})
}

// sqliteDSN enables foreign keys and a bounded busy timeout unless the
// caller already set them.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
		params = append(params, "_foreign_keys=1")
	}
	if !strings.Contains(dsn, "_busy_timeout") && !strings.Contains(dsn, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
