package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// EntryRepo defines the persistence operations for journal entries.
type EntryRepo interface {
	// ListAll returns every entry ordered by id ascending.
	ListAll(ctx context.Context) ([]domain.Entry, error)

	// ListByTrip returns a trip's entries ordered by timestamp, then id.
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Entry, error)

	// ListBetween returns a trip's entries with from <= timestamp < to,
	// ordered by timestamp, then id.
	ListBetween(ctx context.Context, tripID int64, from, to time.Time) ([]domain.Entry, error)

	// GetByID retrieves a single entry. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.Entry, error)

	// Exists reports whether an entry with id is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// Insert stores a new entry exactly as given. A missing trip yields
	// domain.ErrReferentialViolation.
	Insert(ctx context.Context, entry domain.Entry) error

	// Update overwrites every mutable column of an existing entry.
	// Returns domain.ErrNotFound if no entry with that id exists.
	Update(ctx context.Context, entry domain.Entry) error

	// Upsert inserts the entry or replaces the row with the same id.
	// It reports whether a new row was inserted.
	Upsert(ctx context.Context, entry domain.Entry) (bool, error)

	// Delete removes an entry and, by cascade, its attachments and favorite.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

type sqlEntryRepo struct {
	db store.Querier
}

// NewEntryRepo constructs an EntryRepo over q.
func NewEntryRepo(q store.Querier) EntryRepo {
	return &sqlEntryRepo{db: q}
}

const entryColumns = `id, trip_id, type, title, body, media, latitude, longitude,
	occurred_at, tags, created_at, updated_at`

func (r *sqlEntryRepo) ListAll(ctx context.Context) ([]domain.Entry, error) {
	return r.list(ctx, "repo.EntryRepo.ListAll", `ORDER BY id`)
}

func (r *sqlEntryRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.Entry, error) {
	return r.list(ctx, "repo.EntryRepo.ListByTrip",
		`WHERE trip_id = ? ORDER BY occurred_at, id`, tripID)
}

func (r *sqlEntryRepo) ListBetween(ctx context.Context, tripID int64, from, to time.Time) ([]domain.Entry, error) {
	return r.list(ctx, "repo.EntryRepo.ListBetween",
		`WHERE trip_id = ? AND occurred_at >= ? AND occurred_at < ? ORDER BY occurred_at, id`,
		tripID, toNanos(from), toNanos(to))
}

func (r *sqlEntryRepo) list(ctx context.Context, op, where string, args ...any) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries `+where, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	entries, err := collect(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (r *sqlEntryRepo) GetByID(ctx context.Context, id int64) (domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return domain.Entry{}, wrap("repo.EntryRepo.GetByID", err)
	}
	return e, nil
}

func (r *sqlEntryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, "repo.EntryRepo.Exists", `SELECT 1 FROM entries WHERE id = ?`, id)
}

func (r *sqlEntryRepo) Insert(ctx context.Context, e domain.Entry) error {
	args, err := entryArgs(e)
	if err != nil {
		return fmt.Errorf("repo.EntryRepo.Insert: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return wrap("repo.EntryRepo.Insert", err)
	}
	return nil
}

func (r *sqlEntryRepo) Update(ctx context.Context, e domain.Entry) error {
	args, err := entryArgs(e)
	if err != nil {
		return fmt.Errorf("repo.EntryRepo.Update: %w", err)
	}
	args = append(args[1:], e.ID)
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET trip_id     = ?,
		    type        = ?,
		    title       = ?,
		    body        = ?,
		    media       = ?,
		    latitude    = ?,
		    longitude   = ?,
		    occurred_at = ?,
		    tags        = ?,
		    created_at  = ?,
		    updated_at  = ?
		WHERE id = ?`, args...)
	if err != nil {
		return wrap("repo.EntryRepo.Update", err)
	}
	return expectOne("repo.EntryRepo.Update", res)
}

func (r *sqlEntryRepo) Upsert(ctx context.Context, e domain.Entry) (bool, error) {
	found, err := r.Exists(ctx, e.ID)
	if err != nil {
		return false, fmt.Errorf("repo.EntryRepo.Upsert: %w", err)
	}
	args, err := entryArgs(e)
	if err != nil {
		return false, fmt.Errorf("repo.EntryRepo.Upsert: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			trip_id     = excluded.trip_id,
			type        = excluded.type,
			title       = excluded.title,
			body        = excluded.body,
			media       = excluded.media,
			latitude    = excluded.latitude,
			longitude   = excluded.longitude,
			occurred_at = excluded.occurred_at,
			tags        = excluded.tags,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`, args...)
	if err != nil {
		return false, wrap("repo.EntryRepo.Upsert", err)
	}
	return !found, nil
}

func (r *sqlEntryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.EntryRepo.Delete", err)
	}
	return expectOne("repo.EntryRepo.Delete", res)
}

func entryArgs(e domain.Entry) ([]any, error) {
	media, err := encodeList(e.Media)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(e.Tags)
	if err != nil {
		return nil, err
	}
	var lat, lon sql.NullFloat64
	if e.Coordinates != nil {
		lat = sql.NullFloat64{Float64: e.Coordinates.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: e.Coordinates.Longitude, Valid: true}
	}
	return []any{
		e.ID, e.TripID, string(e.Type), e.Title, e.Text, media, lat, lon,
		toNanos(e.Timestamp), tags, toNanos(e.CreatedAt), toNanos(e.UpdatedAt),
	}, nil
}

func scanEntry(s scanner) (domain.Entry, error) {
	var (
		e                     domain.Entry
		typ, media, tags      string
		title, body           sql.NullString
		lat, lon              sql.NullFloat64
		occurred, created, up int64
	)
	err := s.Scan(&e.ID, &e.TripID, &typ, &title, &body, &media, &lat, &lon,
		&occurred, &tags, &created, &up)
	if err != nil {
		return domain.Entry{}, err
	}
	if e.Media, err = decodeList(media); err != nil {
		return domain.Entry{}, err
	}
	if e.Tags, err = decodeList(tags); err != nil {
		return domain.Entry{}, err
	}
	e.Type = domain.EntryType(typ)
	e.Title = nullString(title)
	e.Text = nullString(body)
	if lat.Valid && lon.Valid {
		e.Coordinates = &domain.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	e.Timestamp = fromNanos(occurred)
	e.CreatedAt = fromNanos(created)
	e.UpdatedAt = fromNanos(up)
	return e, nil
}
