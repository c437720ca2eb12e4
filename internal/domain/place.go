package domain

import (
	"fmt"
	"time"
)

// Place is a named location visited during a trip.
type Place struct {
	ID          int64
	TripID      int64
	Name        string
	Coordinates Coordinates
	Note        *string
	Photo       *string
}

// Validate checks the place's own invariants.
func (p Place) Validate() error {
	if p.TripID == 0 {
		return fmt.Errorf("%w: trip id is required", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return p.Coordinates.Validate()
}

// RoutePoint is a single recorded position on a trip's route.
// Route points are ordered by Timestamp within a trip.
type RoutePoint struct {
	ID          int64
	TripID      int64
	Coordinates Coordinates
	Timestamp   time.Time
	Altitude    *float64 // metres
	Speed       *float64 // metres per second
}

// Validate checks the route point's own invariants.
func (r RoutePoint) Validate() error {
	if r.TripID == 0 {
		return fmt.Errorf("%w: trip id is required", ErrValidation)
	}
	if err := (namedTime{"timestamp", r.Timestamp}).check(); err != nil {
		return err
	}
	if r.Speed != nil && *r.Speed < 0 {
		return fmt.Errorf("%w: speed must not be negative", ErrValidation)
	}
	return r.Coordinates.Validate()
}
