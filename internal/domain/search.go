package domain

import "time"

// SearchKind tells whether a search hit is a trip or an entry.
type SearchKind string

const (
	SearchKindTrip  SearchKind = "trip"
	SearchKindEntry SearchKind = "entry"
)

// SearchHit is one match returned by a free-text search.
// For trip hits EntryID is zero.
type SearchHit struct {
	Kind      SearchKind
	TripID    int64
	EntryID   int64
	Title     string
	UpdatedAt time.Time
}

// RecentQueryLimit is how many past search queries are remembered.
const RecentQueryLimit = 10
