package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// PlaceRepo defines the persistence operations for Places.
// Places are always listed within the trip that owns them.
type PlaceRepo interface {
	// Insert stores a new place. A missing trip yields
	// domain.ErrReferentialViolation.
	Insert(ctx context.Context, p domain.Place) error

	// GetByID retrieves a single place. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.Place, error)

	// ListByTrip returns a trip's places ordered by id.
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Place, error)

	// Update overwrites the mutable fields of a place.
	// Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, p domain.Place) error

	// Delete removes a place. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type sqlPlaceRepo struct {
	db store.Querier
}

// NewPlaceRepo constructs a PlaceRepo over q.
func NewPlaceRepo(q store.Querier) PlaceRepo {
	return &sqlPlaceRepo{db: q}
}

const placeColumns = `id, trip_id, name, latitude, longitude, note, photo`

func (r *sqlPlaceRepo) Insert(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO places (`+placeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TripID, p.Name, p.Coordinates.Latitude, p.Coordinates.Longitude, p.Note, p.Photo)
	if err != nil {
		return wrap("repo.PlaceRepo.Insert", err)
	}
	return nil
}

func (r *sqlPlaceRepo) GetByID(ctx context.Context, id int64) (domain.Place, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	p, err := scanPlace(row)
	if err != nil {
		return domain.Place{}, wrap("repo.PlaceRepo.GetByID", err)
	}
	return p, nil
}

func (r *sqlPlaceRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, wrap("repo.PlaceRepo.ListByTrip", err)
	}
	places, err := collect(rows, scanPlace)
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByTrip: %w", err)
	}
	return places, nil
}

func (r *sqlPlaceRepo) Update(ctx context.Context, p domain.Place) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE places
		SET name      = ?,
		    latitude  = ?,
		    longitude = ?,
		    note      = ?,
		    photo     = ?
		WHERE id = ?`,
		p.Name, p.Coordinates.Latitude, p.Coordinates.Longitude, p.Note, p.Photo, p.ID)
	if err != nil {
		return wrap("repo.PlaceRepo.Update", err)
	}
	return expectOne("repo.PlaceRepo.Update", res)
}

func (r *sqlPlaceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.PlaceRepo.Delete", err)
	}
	return expectOne("repo.PlaceRepo.Delete", res)
}

func scanPlace(s scanner) (domain.Place, error) {
	var (
		p           domain.Place
		note, photo sql.NullString
	)
	err := s.Scan(&p.ID, &p.TripID, &p.Name, &p.Coordinates.Latitude, &p.Coordinates.Longitude, &note, &photo)
	if err != nil {
		return domain.Place{}, err
	}
	p.Note = nullString(note)
	p.Photo = nullString(photo)
	return p, nil
}
