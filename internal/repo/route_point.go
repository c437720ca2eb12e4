package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// RoutePointRepo defines the persistence operations for recorded route points.
type RoutePointRepo interface {
	// Insert stores a new route point. A missing trip yields
	// domain.ErrReferentialViolation.
	Insert(ctx context.Context, p domain.RoutePoint) error

	// ListByTrip returns a trip's route in timestamp order.
	ListByTrip(ctx context.Context, tripID int64) ([]domain.RoutePoint, error)

	// CountByTrip returns how many points a trip's route has.
	CountByTrip(ctx context.Context, tripID int64) (int, error)

	// Delete removes a route point. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type sqlRoutePointRepo struct {
	db store.Querier
}

// NewRoutePointRepo constructs a RoutePointRepo over q.
func NewRoutePointRepo(q store.Querier) RoutePointRepo {
	return &sqlRoutePointRepo{db: q}
}

func (r *sqlRoutePointRepo) Insert(ctx context.Context, p domain.RoutePoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO route_points (id, trip_id, latitude, longitude, recorded_at, altitude, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TripID, p.Coordinates.Latitude, p.Coordinates.Longitude,
		toNanos(p.Timestamp), p.Altitude, p.Speed)
	if err != nil {
		return wrap("repo.RoutePointRepo.Insert", err)
	}
	return nil
}

func (r *sqlRoutePointRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.RoutePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trip_id, latitude, longitude, recorded_at, altitude, speed
		FROM route_points
		WHERE trip_id = ?
		ORDER BY recorded_at, id`, tripID)
	if err != nil {
		return nil, wrap("repo.RoutePointRepo.ListByTrip", err)
	}
	points, err := collect(rows, func(s scanner) (domain.RoutePoint, error) {
		var (
			p               domain.RoutePoint
			recorded        int64
			altitude, speed sql.NullFloat64
		)
		err := s.Scan(&p.ID, &p.TripID, &p.Coordinates.Latitude, &p.Coordinates.Longitude,
			&recorded, &altitude, &speed)
		if err != nil {
			return domain.RoutePoint{}, err
		}
		p.Timestamp = fromNanos(recorded)
		p.Altitude = nullFloat(altitude)
		p.Speed = nullFloat(speed)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.RoutePointRepo.ListByTrip: %w", err)
	}
	return points, nil
}

func (r *sqlRoutePointRepo) CountByTrip(ctx context.Context, tripID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM route_points WHERE trip_id = ?`, tripID).Scan(&n)
	if err != nil {
		return 0, wrap("repo.RoutePointRepo.CountByTrip", err)
	}
	return n, nil
}

func (r *sqlRoutePointRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM route_points WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.RoutePointRepo.Delete", err)
	}
	return expectOne("repo.RoutePointRepo.Delete", res)
}
