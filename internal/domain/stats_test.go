package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/trip-journal/internal/domain"
)

func TestProgress(t *testing.T) {
	start, end := day(2024, 5, 1), day(2024, 5, 5)
	tests := []struct {
		name  string
		today time.Time
		want  float64
	}{
		{"before start", day(2024, 4, 30), 0},
		{"first day", day(2024, 5, 1), 0},
		{"midway", day(2024, 5, 3), 0.5},
		{"time of day ignored", time.Date(2024, 5, 3, 23, 59, 0, 0, time.UTC), 0.5},
		{"last day", day(2024, 5, 5), 1},
		{"after end", day(2024, 6, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.Progress(start, end, tt.today), 1e-9)
		})
	}
}

func TestProgress_SingleDayTrip(t *testing.T) {
	d := day(2024, 5, 3)

	assert.InDelta(t, 0, domain.Progress(d, d, day(2024, 5, 2)), 1e-9)
	assert.InDelta(t, 1, domain.Progress(d, d, d), 1e-9)
	assert.InDelta(t, 1, domain.Progress(d, d, day(2024, 5, 4)), 1e-9)
}

func TestComputeTripStats(t *testing.T) {
	trip := validTrip()
	entries := []domain.Entry{
		{Type: domain.EntryPhoto},
		{Type: domain.EntryPhoto},
		{Type: domain.EntryNote},
		{Type: domain.EntryPlace},
		{Type: domain.EntryTripMeta},
	}

	got := domain.ComputeTripStats(trip, entries, 0, day(2024, 5, 2))

	assert.Equal(t, domain.TripStats{
		TripID:       1,
		PhotoCount:   2,
		NoteCount:    1,
		PlaceCount:   1,
		HasRoute:     false,
		Progress:     0.25,
		DurationDays: 4,
	}, got)
}

func TestComputeTripStats_HasRoute(t *testing.T) {
	trip := validTrip()

	assert.True(t, domain.ComputeTripStats(trip, nil, 3, day(2024, 5, 2)).HasRoute)
	assert.True(t, domain.ComputeTripStats(trip, []domain.Entry{{Type: domain.EntryRoutePoint}}, 0, day(2024, 5, 2)).HasRoute)
	assert.False(t, domain.ComputeTripStats(trip, nil, 0, day(2024, 5, 2)).HasRoute)
}
