package service

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// RoutePointService records the GPS track of a trip.
type RoutePointService struct {
	core   *Core
	points repo.RoutePointRepo
	byTrip *keyedCollection[int64, []domain.RoutePoint]
}

// NewRoutePointService constructs a RoutePointService over the core's store.
func NewRoutePointService(c *Core) *RoutePointService {
	s := &RoutePointService{core: c, points: repo.NewRoutePointRepo(c.store)}
	s.byTrip = newKeyedCollection(c, "trip-route", s.points.ListByTrip, watch.RoutePoints)
	return s
}

// ObserveTrip streams a trip's route in timestamp order.
func (s *RoutePointService) ObserveTrip(ctx context.Context, tripID int64) (*watch.Subscription[[]domain.RoutePoint], error) {
	sub, err := s.byTrip.observe(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.RoutePointService.ObserveTrip: %w", err)
	}
	return sub, nil
}

// Record stores one position. A zero Timestamp means now.
func (s *RoutePointService) Record(ctx context.Context, p domain.RoutePoint) (domain.RoutePoint, error) {
	p.ID = s.core.newID()
	if p.Timestamp.IsZero() {
		p.Timestamp = s.core.Now()
	}
	p.Timestamp = p.Timestamp.UTC()
	if err := p.Validate(); err != nil {
		return domain.RoutePoint{}, fmt.Errorf("service.RoutePointService.Record: %w", err)
	}
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		if err := requireTrip(ctx, repo.NewTripRepo(q), p.TripID, domain.ErrReferentialViolation); err != nil {
			return err
		}
		return repo.NewRoutePointRepo(q).Insert(ctx, p)
	})
	if err != nil {
		return domain.RoutePoint{}, fmt.Errorf("service.RoutePointService.Record: %w", err)
	}
	s.core.notify(ctx, watch.RoutePoints)
	return p, nil
}

// ListByTrip returns a trip's route points ordered by timestamp.
func (s *RoutePointService) ListByTrip(ctx context.Context, tripID int64) ([]domain.RoutePoint, error) {
	list, err := s.points.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.RoutePointService.ListByTrip: %w", err)
	}
	return list, nil
}

// HasRoute reports whether any position was recorded for the trip.
func (s *RoutePointService) HasRoute(ctx context.Context, tripID int64) (bool, error) {
	n, err := s.points.CountByTrip(ctx, tripID)
	if err != nil {
		return false, fmt.Errorf("service.RoutePointService.HasRoute: %w", err)
	}
	return n > 0, nil
}

// Delete removes a route point by ID.
func (s *RoutePointService) Delete(ctx context.Context, id int64) error {
	if err := s.points.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RoutePointService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.RoutePoints)
	return nil
}
