package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete SQL
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// List returns all trips ordered by start_date descending, then id.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListByID returns all trips ordered by id ascending. Backups use this
	// order so an unchanged store always exports the same bytes.
	ListByID(ctx context.Context) ([]domain.Trip, error)

	// GetByID retrieves a single trip. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.Trip, error)

	// Exists reports whether a trip with id is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// Insert stores a new trip exactly as given, including id and timestamps.
	Insert(ctx context.Context, trip domain.Trip) error

	// Update overwrites every mutable column of an existing trip.
	// Returns domain.ErrNotFound if no trip with that id exists.
	Update(ctx context.Context, trip domain.Trip) error

	// Upsert inserts the trip or replaces the row with the same id.
	// It reports whether a new row was inserted.
	Upsert(ctx context.Context, trip domain.Trip) (bool, error)

	// Delete removes a trip. Entries, places, route points and favorites
	// that reference it are removed by the schema's cascades.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// SetLastExported records when the trip was last exported.
	SetLastExported(ctx context.Context, id int64, at time.Time) error
}

type sqlTripRepo struct {
	db store.Querier
}

// NewTripRepo constructs a TripRepo over q. Pass the *store.Store for
// standalone calls, or the Querier handed to store.WithTx inside a transaction.
func NewTripRepo(q store.Querier) TripRepo {
	return &sqlTripRepo{db: q}
}

const tripColumns = `id, title, start_date, end_date, category, cover_image, description,
	tags, created_at, updated_at, last_exported_at, progress`

func (r *sqlTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return r.list(ctx, "repo.TripRepo.List", `ORDER BY start_date DESC, id`)
}

func (r *sqlTripRepo) ListByID(ctx context.Context) ([]domain.Trip, error) {
	return r.list(ctx, "repo.TripRepo.ListByID", `ORDER BY id`)
}

func (r *sqlTripRepo) list(ctx context.Context, op, order string) ([]domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips `+order)
	if err != nil {
		return nil, wrap(op, err)
	}
	trips, err := collect(rows, scanTrip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trips, nil
}

func (r *sqlTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, wrap("repo.TripRepo.GetByID", err)
	}
	return t, nil
}

func (r *sqlTripRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, "repo.TripRepo.Exists", `SELECT 1 FROM trips WHERE id = ?`, id)
}

func (r *sqlTripRepo) Insert(ctx context.Context, t domain.Trip) error {
	args, err := tripArgs(t)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Insert: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return wrap("repo.TripRepo.Insert", err)
	}
	return nil
}

func (r *sqlTripRepo) Update(ctx context.Context, t domain.Trip) error {
	args, err := tripArgs(t)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	// id moves from first to last to match the WHERE clause.
	args = append(args[1:], t.ID)
	res, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET title            = ?,
		    start_date       = ?,
		    end_date         = ?,
		    category         = ?,
		    cover_image      = ?,
		    description      = ?,
		    tags             = ?,
		    created_at       = ?,
		    updated_at       = ?,
		    last_exported_at = ?,
		    progress         = ?
		WHERE id = ?`, args...)
	if err != nil {
		return wrap("repo.TripRepo.Update", err)
	}
	return expectOne("repo.TripRepo.Update", res)
}

func (r *sqlTripRepo) Upsert(ctx context.Context, t domain.Trip) (bool, error) {
	found, err := r.Exists(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Upsert: %w", err)
	}
	args, err := tripArgs(t)
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Upsert: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title            = excluded.title,
			start_date       = excluded.start_date,
			end_date         = excluded.end_date,
			category         = excluded.category,
			cover_image      = excluded.cover_image,
			description      = excluded.description,
			tags             = excluded.tags,
			created_at       = excluded.created_at,
			updated_at       = excluded.updated_at,
			last_exported_at = excluded.last_exported_at,
			progress         = excluded.progress`, args...)
	if err != nil {
		return false, wrap("repo.TripRepo.Upsert", err)
	}
	return !found, nil
}

func (r *sqlTripRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.TripRepo.Delete", err)
	}
	return expectOne("repo.TripRepo.Delete", res)
}

func (r *sqlTripRepo) SetLastExported(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trips SET last_exported_at = ? WHERE id = ?`, toNanos(at), id)
	if err != nil {
		return wrap("repo.TripRepo.SetLastExported", err)
	}
	return expectOne("repo.TripRepo.SetLastExported", res)
}

// tripArgs returns the column values in tripColumns order.
func tripArgs(t domain.Trip) ([]any, error) {
	tags, err := encodeList(t.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID, t.Title, toNanos(t.StartDate), toNanos(t.EndDate), string(t.Category),
		t.CoverImage, t.Description, tags, toNanos(t.CreatedAt), toNanos(t.UpdatedAt),
		toNullNanos(t.LastExportedAt), t.Progress,
	}, nil
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                        domain.Trip
		start, end, created, upd int64
		category, tags           string
		cover, description       sql.NullString
		lastExported             sql.NullInt64
	)
	err := s.Scan(&t.ID, &t.Title, &start, &end, &category, &cover, &description,
		&tags, &created, &upd, &lastExported, &t.Progress)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.Tags, err = decodeList(tags); err != nil {
		return domain.Trip{}, err
	}
	t.StartDate = fromNanos(start)
	t.EndDate = fromNanos(end)
	t.Category = domain.Category(category)
	t.CoverImage = nullString(cover)
	t.Description = nullString(description)
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(upd)
	t.LastExportedAt = fromNullNanos(lastExported)
	return t, nil
}
