package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/pkordes/trip-journal/internal/domain"
)

// Postgres SQLSTATE codes for constraint violations.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// Classify maps a driver error onto the domain error taxonomy:
//
//   - sql.ErrNoRows                      → domain.ErrNotFound
//   - foreign key violation              → domain.ErrReferentialViolation
//   - unique / check / not-null violation → domain.ErrValidation
//   - context cancellation               → returned unchanged
//   - anything else                      → domain.ErrStoreUnavailable
//
// Errors that already carry a domain sentinel pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		domain.ErrNotFound, domain.ErrValidation, domain.ErrReferentialViolation,
		domain.ErrCorruptBackup, domain.ErrOrphanEntry, domain.ErrStoreUnavailable,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %w", domain.ErrReferentialViolation, err)
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey,
			sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", domain.ErrReferentialViolation, err)
		case pgUniqueViolation, pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
