package service

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
)

// StatsService computes trip summaries. Nothing is cached: every call reads
// the current entries and route points.
type StatsService struct {
	core    *Core
	trips   repo.TripRepo
	entries repo.EntryRepo
	points  repo.RoutePointRepo
}

// NewStatsService constructs a StatsService over the core's store.
func NewStatsService(c *Core) *StatsService {
	return &StatsService{
		core:    c,
		trips:   repo.NewTripRepo(c.store),
		entries: repo.NewEntryRepo(c.store),
		points:  repo.NewRoutePointRepo(c.store),
	}
}

// ForTrip returns the stats of one trip as of now.
func (s *StatsService) ForTrip(ctx context.Context, tripID int64) (domain.TripStats, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TripStats{}, fmt.Errorf("service.StatsService.ForTrip: %w", err)
	}
	st, err := s.compute(ctx, t)
	if err != nil {
		return domain.TripStats{}, fmt.Errorf("service.StatsService.ForTrip: %w", err)
	}
	return st, nil
}

// ForAllTrips returns stats for every trip in List order.
func (s *StatsService) ForAllTrips(ctx context.Context) ([]domain.TripStats, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.StatsService.ForAllTrips: %w", err)
	}
	out := make([]domain.TripStats, 0, len(trips))
	for _, t := range trips {
		st, err := s.compute(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("service.StatsService.ForAllTrips: %w", err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *StatsService) compute(ctx context.Context, t domain.Trip) (domain.TripStats, error) {
	entries, err := s.entries.ListByTrip(ctx, t.ID)
	if err != nil {
		return domain.TripStats{}, err
	}
	n, err := s.points.CountByTrip(ctx, t.ID)
	if err != nil {
		return domain.TripStats{}, err
	}
	return domain.ComputeTripStats(t, entries, n, s.core.Now()), nil
}
