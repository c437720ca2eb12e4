package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	core  *Core
	trips repo.TripRepo
	all   *collection[[]domain.Trip]
}

// NewTripService constructs a TripService over the core's store.
func NewTripService(c *Core) *TripService {
	s := &TripService{core: c, trips: repo.NewTripRepo(c.store)}
	s.all = newCollection(c, "trips", s.list, watch.Trips)
	return s
}

// Observe streams the full trip list, newest start date first. The first
// value is the current list; a fresh list follows every committed write.
func (s *TripService) Observe(ctx context.Context) (*watch.Subscription[[]domain.Trip], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Observe: %w", err)
	}
	return sub, nil
}

// List returns all trips, newest start date first.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return s.withProgress(t, s.core.Now()), nil
}

func (s *TripService) list(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.core.Now()
	for i := range trips {
		trips[i] = s.withProgress(trips[i], now)
	}
	return trips, nil
}

// withProgress replaces the stored progress with the value for now. The
// stored column is what backups carry.
func (s *TripService) withProgress(t domain.Trip, now time.Time) domain.Trip {
	t.Progress = domain.Progress(t.StartDate, t.EndDate, now)
	return t
}

// Create validates and persists a new trip. The id, timestamps, and
// progress are assigned here; dates are truncated to UTC midnight.
func (s *TripService) Create(ctx context.Context, d domain.TripDraft) (domain.Trip, error) {
	now := s.core.Now()
	t := domain.Trip{
		ID:          s.core.newID(),
		Title:       strings.TrimSpace(d.Title),
		StartDate:   domain.DateOf(d.StartDate),
		EndDate:     domain.DateOf(d.EndDate),
		Category:    d.Category,
		CoverImage:  d.CoverImage,
		Description: d.Description,
		Tags:        d.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Progress = domain.Progress(t.StartDate, t.EndDate, now)
	if err := t.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if err := s.trips.Insert(ctx, t); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.core.notify(ctx, watch.Trips)
	return t, nil
}

// Update applies patch to the trip with the given id and returns the result.
// CreatedAt is kept; UpdatedAt and progress are recomputed.
func (s *TripService) Update(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	var out domain.Trip
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		trips := repo.NewTripRepo(q)
		cur, err := trips.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := patch.Apply(cur)
		next.Title = strings.TrimSpace(next.Title)
		next.UpdatedAt = s.core.Now()
		next.Progress = domain.Progress(next.StartDate, next.EndDate, next.UpdatedAt)
		if err := next.Validate(); err != nil {
			return err
		}
		if err := trips.Update(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.core.notify(ctx, watch.Trips)
	return out, nil
}

// Delete removes a trip and, through the store's cascades, everything it
// owns: entries, attachments, places, route points, and favorites.
func (s *TripService) Delete(ctx context.Context, id int64) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.Trips, watch.Entries, watch.Places, watch.RoutePoints, watch.Favorites)
	return nil
}

// MarkExported records when the trip was last exported.
func (s *TripService) MarkExported(ctx context.Context, id int64, at time.Time) error {
	if err := s.trips.SetLastExported(ctx, id, at); err != nil {
		return fmt.Errorf("service.TripService.MarkExported: %w", err)
	}
	s.core.notify(ctx, watch.Trips)
	return nil
}
