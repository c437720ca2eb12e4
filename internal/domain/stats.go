package domain

import "time"

// TripStats is the computed summary shown for a trip.
type TripStats struct {
	TripID       int64
	PhotoCount   int
	NoteCount    int
	PlaceCount   int
	HasRoute     bool
	Progress     float64
	DurationDays int
}

// Progress returns the fraction of a trip's calendar days that have elapsed
// by today, clamped to [0,1]. A trip that ended before today is 1.0, one that
// starts after today is 0.0, and a single-day trip happening today is 1.0.
func Progress(start, end, today time.Time) float64 {
	s, e, d := DateOf(start), DateOf(end), DateOf(today)
	if d.Before(s) {
		return 0
	}
	if e.Before(d) {
		return 1
	}
	total := DaysBetween(s, e)
	if total == 0 {
		return 1
	}
	ratio := float64(DaysBetween(s, d)) / float64(total)
	return max(0, min(1, ratio))
}

// ComputeTripStats derives TripStats from a trip, its entries, and the number
// of recorded route points. It keeps no state between calls.
func ComputeTripStats(trip Trip, entries []Entry, routePoints int, today time.Time) TripStats {
	st := TripStats{
		TripID:       trip.ID,
		HasRoute:     routePoints > 0,
		Progress:     Progress(trip.StartDate, trip.EndDate, today),
		DurationDays: trip.Duration(),
	}
	for _, e := range entries {
		switch e.Type {
		case EntryPhoto:
			st.PhotoCount++
		case EntryNote:
			st.NoteCount++
		case EntryPlace:
			st.PlaceCount++
		case EntryRoutePoint:
			st.HasRoute = true
		}
	}
	return st
}
