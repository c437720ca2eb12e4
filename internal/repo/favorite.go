package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// FavoriteRepo defines the persistence operations for Favorites.
type FavoriteRepo interface {
	// Insert stores a new favorite. A missing trip or entry yields
	// domain.ErrReferentialViolation; a second favorite for the same target
	// yields domain.ErrValidation.
	Insert(ctx context.Context, f domain.Favorite) error

	// List returns all favorites, newest first.
	List(ctx context.Context) ([]domain.Favorite, error)

	// FindByTrip returns the favorite for a trip, or domain.ErrNotFound.
	FindByTrip(ctx context.Context, tripID int64) (domain.Favorite, error)

	// FindByEntry returns the favorite for an entry, or domain.ErrNotFound.
	FindByEntry(ctx context.Context, entryID int64) (domain.Favorite, error)

	// Delete removes a favorite. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type sqlFavoriteRepo struct {
	db store.Querier
}

// NewFavoriteRepo constructs a FavoriteRepo over q.
func NewFavoriteRepo(q store.Querier) FavoriteRepo {
	return &sqlFavoriteRepo{db: q}
}

const favoriteColumns = `id, trip_id, entry_id, created_at`

func (r *sqlFavoriteRepo) Insert(ctx context.Context, f domain.Favorite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (`+favoriteColumns+`) VALUES (?, ?, ?, ?)`,
		f.ID, f.TripID, f.EntryID, toNanos(f.CreatedAt))
	if err != nil {
		return wrap("repo.FavoriteRepo.Insert", err)
	}
	return nil
}

func (r *sqlFavoriteRepo) List(ctx context.Context) ([]domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, wrap("repo.FavoriteRepo.List", err)
	}
	favs, err := collect(rows, scanFavorite)
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.List: %w", err)
	}
	return favs, nil
}

func (r *sqlFavoriteRepo) FindByTrip(ctx context.Context, tripID int64) (domain.Favorite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE trip_id = ?`, tripID)
	f, err := scanFavorite(row)
	if err != nil {
		return domain.Favorite{}, wrap("repo.FavoriteRepo.FindByTrip", err)
	}
	return f, nil
}

func (r *sqlFavoriteRepo) FindByEntry(ctx context.Context, entryID int64) (domain.Favorite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE entry_id = ?`, entryID)
	f, err := scanFavorite(row)
	if err != nil {
		return domain.Favorite{}, wrap("repo.FavoriteRepo.FindByEntry", err)
	}
	return f, nil
}

func (r *sqlFavoriteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.FavoriteRepo.Delete", err)
	}
	return expectOne("repo.FavoriteRepo.Delete", res)
}

func scanFavorite(s scanner) (domain.Favorite, error) {
	var (
		f               domain.Favorite
		tripID, entryID sql.NullInt64
		created         int64
	)
	if err := s.Scan(&f.ID, &tripID, &entryID, &created); err != nil {
		return domain.Favorite{}, err
	}
	if tripID.Valid {
		f.TripID = &tripID.Int64
	}
	if entryID.Valid {
		f.EntryID = &entryID.Int64
	}
	f.CreatedAt = fromNanos(created)
	return f, nil
}
