package domain

import (
	"fmt"
	"time"
)

// Favorite bookmarks either a trip or an entry, never both.
// It is a weak reference: deleting the bookmarked row deletes the favorite.
type Favorite struct {
	ID        int64
	TripID    *int64
	EntryID   *int64
	CreatedAt time.Time
}

// Validate enforces that exactly one of TripID and EntryID is set.
func (f Favorite) Validate() error {
	if (f.TripID == nil) == (f.EntryID == nil) {
		return fmt.Errorf("%w: favorite must reference exactly one of trip or entry", ErrValidation)
	}
	return nil
}
