package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// PlaceService manages the named places of a trip.
type PlaceService struct {
	core   *Core
	places repo.PlaceRepo
	trips  repo.TripRepo
	byTrip *keyedCollection[int64, []domain.Place]
}

// NewPlaceService constructs a PlaceService over the core's store.
func NewPlaceService(c *Core) *PlaceService {
	s := &PlaceService{core: c, places: repo.NewPlaceRepo(c.store), trips: repo.NewTripRepo(c.store)}
	s.byTrip = newKeyedCollection(c, "trip-places", s.places.ListByTrip, watch.Places)
	return s
}

// ObserveTrip streams the places of one trip.
func (s *PlaceService) ObserveTrip(ctx context.Context, tripID int64) (*watch.Subscription[[]domain.Place], error) {
	sub, err := s.byTrip.observe(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.ObserveTrip: %w", err)
	}
	return sub, nil
}

// Create assigns an id to p and stores it. p.ID is ignored.
func (s *PlaceService) Create(ctx context.Context, p domain.Place) (domain.Place, error) {
	p.ID = s.core.newID()
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		if err := requireTrip(ctx, repo.NewTripRepo(q), p.TripID, domain.ErrReferentialViolation); err != nil {
			return err
		}
		return repo.NewPlaceRepo(q).Insert(ctx, p)
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	s.core.notify(ctx, watch.Places)
	return p, nil
}

// GetByID returns a single place by ID.
func (s *PlaceService) GetByID(ctx context.Context, id int64) (domain.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByID: %w", err)
	}
	return p, nil
}

// ListByTrip returns a trip's places. Returns domain.ErrNotFound when the
// trip does not exist.
func (s *PlaceService) ListByTrip(ctx context.Context, tripID int64) ([]domain.Place, error) {
	if err := requireTrip(ctx, s.trips, tripID, domain.ErrNotFound); err != nil {
		return nil, fmt.Errorf("service.PlaceService.ListByTrip: %w", err)
	}
	list, err := s.places.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.ListByTrip: %w", err)
	}
	return list, nil
}

// Update replaces the editable fields of a place. The owning trip cannot
// change.
func (s *PlaceService) Update(ctx context.Context, p domain.Place) (domain.Place, error) {
	var out domain.Place
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		places := repo.NewPlaceRepo(q)
		cur, err := places.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		p.TripID = cur.TripID
		p.Name = strings.TrimSpace(p.Name)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := places.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
	}
	s.core.notify(ctx, watch.Places)
	return out, nil
}

// Delete removes a place by ID.
func (s *PlaceService) Delete(ctx context.Context, id int64) error {
	if err := s.places.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.Places)
	return nil
}
