// Package domain contains the core data types for the travel journal.
// This package has no dependencies on the store, repo, or service layers and
// is imported by every other internal package.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Category classifies a trip.
type Category string

const (
	CategoryCityBreak Category = "city-break"
	CategoryRoadTrip  Category = "road-trip"
	CategoryHiking    Category = "hiking"
	CategoryBeach     Category = "beach"
	CategoryFamily    Category = "family"
	CategorySolo      Category = "solo"
	CategoryBusiness  Category = "business"
)

// Categories lists every valid Category in display order.
var Categories = []Category{
	CategoryCityBreak, CategoryRoadTrip, CategoryHiking, CategoryBeach,
	CategoryFamily, CategorySolo, CategoryBusiness,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Trip is the top-level journal container for a date-bounded excursion.
// Entries, places, and route points all belong to a trip.
//
// StartDate and EndDate are UTC midnights. Timestamps are UTC.
type Trip struct {
	ID             int64
	Title          string
	StartDate      time.Time
	EndDate        time.Time
	Category       Category
	CoverImage     *string // opaque local path
	Description    *string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastExportedAt *time.Time
	// Progress is stored as of the last write and carried verbatim by
	// backups. Service reads recompute it for the current day.
	Progress float64 // 0.0 to 1.0
}

// Duration returns the number of whole days between StartDate and EndDate.
// It is never negative.
func (t Trip) Duration() int {
	return DaysBetween(t.StartDate, t.EndDate)
}

// Validate checks the invariants every persisted trip must satisfy.
func (t Trip) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, t.Category)
	}
	for _, f := range []namedTime{
		{"start date", t.StartDate}, {"end date", t.EndDate},
		{"created at", t.CreatedAt}, {"updated at", t.UpdatedAt},
		{"last exported at", derefTime(t.LastExportedAt)},
	} {
		if err := f.check(); err != nil {
			return err
		}
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	if !(t.Progress >= 0 && t.Progress <= 1) {
		return fmt.Errorf("%w: progress must be within [0,1]", ErrValidation)
	}
	return nil
}

// TripDraft carries the caller-supplied fields for a new trip.
// Id, timestamps, and progress are assigned by the service.
type TripDraft struct {
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	Category    Category
	CoverImage  *string
	Description *string
	Tags        []string
}

// TripPatch holds optional field updates. Nil fields are left unchanged.
// ClearCoverImage and ClearDescription remove the optional values.
type TripPatch struct {
	Title            *string
	StartDate        *time.Time
	EndDate          *time.Time
	Category         *Category
	CoverImage       *string
	ClearCoverImage  bool
	Description      *string
	ClearDescription bool
	Tags             *[]string
}

// Apply returns a copy of t with the patch applied.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.StartDate != nil {
		t.StartDate = DateOf(*p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate = DateOf(*p.EndDate)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.CoverImage != nil {
		t.CoverImage = p.CoverImage
	}
	if p.ClearCoverImage {
		t.CoverImage = nil
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.ClearDescription {
		t.Description = nil
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	return t
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b, or 0 when b
// is before a.
func DaysBetween(a, b time.Time) int {
	days := int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// The store keeps instants as int64 nanoseconds since the Unix epoch, which
// bounds every persisted time to roughly 1677..2262.
var (
	MinTime = time.Unix(0, math.MinInt64).UTC()
	MaxTime = time.Unix(0, math.MaxInt64).UTC()
)

// InTimeRange reports whether t lies within [MinTime, MaxTime].
func InTimeRange(t time.Time) bool {
	return !t.Before(MinTime) && !t.After(MaxTime)
}

type namedTime struct {
	name string
	at   time.Time
}

// check rejects a set time outside the storable range. Zero means unset.
func (n namedTime) check() error {
	if n.at.IsZero() || InTimeRange(n.at) {
		return nil
	}
	return fmt.Errorf("%w: %s %s is outside years %d..%d", ErrValidation,
		n.name, n.at.Format(time.RFC3339), MinTime.Year(), MaxTime.Year())
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
