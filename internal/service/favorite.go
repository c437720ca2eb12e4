package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// FavoriteService bookmarks trips and entries.
type FavoriteService struct {
	core *Core
	favs repo.FavoriteRepo
	all  *collection[[]domain.Favorite]
}

// NewFavoriteService constructs a FavoriteService over the core's store.
func NewFavoriteService(c *Core) *FavoriteService {
	s := &FavoriteService{core: c, favs: repo.NewFavoriteRepo(c.store)}
	s.all = newCollection(c, "favorites", s.favs.List, watch.Favorites)
	return s
}

// Observe streams all favorites, most recently added first.
func (s *FavoriteService) Observe(ctx context.Context) (*watch.Subscription[[]domain.Favorite], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.Observe: %w", err)
	}
	return sub, nil
}

// List returns all favorites, most recently added first.
func (s *FavoriteService) List(ctx context.Context) ([]domain.Favorite, error) {
	favs, err := s.favs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	return favs, nil
}

// AddTrip bookmarks a trip. Adding a trip twice returns the first favorite.
func (s *FavoriteService) AddTrip(ctx context.Context, tripID int64) (domain.Favorite, error) {
	f, err := s.add(ctx, domain.Favorite{TripID: &tripID},
		func(ctx context.Context, q store.Querier) (domain.Favorite, error) {
			return repo.NewFavoriteRepo(q).FindByTrip(ctx, tripID)
		},
		func(ctx context.Context, q store.Querier) (bool, error) {
			return repo.NewTripRepo(q).Exists(ctx, tripID)
		})
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("service.FavoriteService.AddTrip: %w", err)
	}
	return f, nil
}

// AddEntry bookmarks an entry. Adding an entry twice returns the first favorite.
func (s *FavoriteService) AddEntry(ctx context.Context, entryID int64) (domain.Favorite, error) {
	f, err := s.add(ctx, domain.Favorite{EntryID: &entryID},
		func(ctx context.Context, q store.Querier) (domain.Favorite, error) {
			return repo.NewFavoriteRepo(q).FindByEntry(ctx, entryID)
		},
		func(ctx context.Context, q store.Querier) (bool, error) {
			return repo.NewEntryRepo(q).Exists(ctx, entryID)
		})
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("service.FavoriteService.AddEntry: %w", err)
	}
	return f, nil
}

func (s *FavoriteService) add(
	ctx context.Context,
	f domain.Favorite,
	find func(context.Context, store.Querier) (domain.Favorite, error),
	target func(context.Context, store.Querier) (bool, error),
) (domain.Favorite, error) {
	created := false
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		existing, err := find(ctx, q)
		if err == nil {
			f = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		ok, err := target(ctx, q)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: favorite target does not exist", domain.ErrReferentialViolation)
		}
		f.ID = s.core.newID()
		f.CreatedAt = s.core.Now()
		if err := f.Validate(); err != nil {
			return err
		}
		created = true
		return repo.NewFavoriteRepo(q).Insert(ctx, f)
	})
	if err != nil {
		return domain.Favorite{}, err
	}
	if created {
		s.core.notify(ctx, watch.Favorites)
	}
	return f, nil
}

// Remove deletes a favorite by ID.
func (s *FavoriteService) Remove(ctx context.Context, id int64) error {
	if err := s.favs.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.FavoriteService.Remove: %w", err)
	}
	s.core.notify(ctx, watch.Favorites)
	return nil
}

// IsTripFavorite reports whether the trip is bookmarked.
func (s *FavoriteService) IsTripFavorite(ctx context.Context, tripID int64) (bool, error) {
	return s.is(ctx, "service.FavoriteService.IsTripFavorite", func() error {
		_, err := s.favs.FindByTrip(ctx, tripID)
		return err
	})
}

// IsEntryFavorite reports whether the entry is bookmarked.
func (s *FavoriteService) IsEntryFavorite(ctx context.Context, entryID int64) (bool, error) {
	return s.is(ctx, "service.FavoriteService.IsEntryFavorite", func() error {
		_, err := s.favs.FindByEntry(ctx, entryID)
		return err
	})
}

func (s *FavoriteService) is(_ context.Context, op string, find func() error) (bool, error) {
	err := find()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}
