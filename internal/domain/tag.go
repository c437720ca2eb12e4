package domain

// Tag is a user-defined label. Names are unique per user, compared
// case-insensitively; the first spelling wins.
// Trips and entries carry tag names as plain strings, so deleting a Tag does
// not rewrite them.
type Tag struct {
	ID    int64
	Name  string
	Color *string // "#rrggbb"
}
