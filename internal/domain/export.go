package domain

import "time"

// ExportRow is a single row of a flat trip export: one row per entry, with
// the trip fields repeated on every row. A trip with no entries yields one
// row with zero values for all entry fields.
type ExportRow struct {
	// Trip fields, repeated for every entry on the trip.
	TripID        int64
	TripTitle     string
	TripStartDate string // "2006-01-02"
	TripEndDate   string // "2006-01-02"
	TripCategory  Category

	// Entry fields, zero when the trip has no entries.
	EntryID    int64
	EntryType  EntryType
	EntryTitle string
	EntryText  string
	Timestamp  *time.Time
	Latitude   *float64
	Longitude  *float64
	Media      []string
	Tags       []string
}

// ExportRows flattens a trip and its entries into ExportRows in entry order.
func ExportRows(trip Trip, entries []Entry) []ExportRow {
	base := ExportRow{
		TripID:        trip.ID,
		TripTitle:     trip.Title,
		TripStartDate: trip.StartDate.Format(time.DateOnly),
		TripEndDate:   trip.EndDate.Format(time.DateOnly),
		TripCategory:  trip.Category,
	}
	if len(entries) == 0 {
		return []ExportRow{base}
	}
	rows := make([]ExportRow, 0, len(entries))
	for _, e := range entries {
		r := base
		r.EntryID = e.ID
		r.EntryType = e.Type
		if e.Title != nil {
			r.EntryTitle = *e.Title
		}
		if e.Text != nil {
			r.EntryText = *e.Text
		}
		ts := e.Timestamp
		r.Timestamp = &ts
		if e.Coordinates != nil {
			lat, lon := e.Coordinates.Latitude, e.Coordinates.Longitude
			r.Latitude, r.Longitude = &lat, &lon
		}
		r.Media = e.Media
		r.Tags = e.Tags
		rows = append(rows, r)
	}
	return rows
}
