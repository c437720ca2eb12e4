package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
)

// CSVRenderer writes one row per entry with the trip fields repeated.
// List values within a cell are pipe-separated to keep each entry on one line.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVRenderer) FileExt() string { return ".csv" }

// csvHeaders defines the column names written as the first row.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_start_date", "trip_end_date", "trip_category",
	"entry_id", "entry_type", "entry_title", "entry_text", "timestamp",
	"latitude", "longitude", "media", "tags",
}

func (CSVRenderer) RenderTrip(w io.Writer, trip domain.Trip, entries []domain.Entry) error {
	return writeCSV(w, domain.ExportRows(trip, entries))
}

func (CSVRenderer) RenderDay(w io.Writer, trip domain.Trip, _ time.Time, entries []domain.Entry) error {
	return writeCSV(w, domain.ExportRows(trip, entries))
}

func writeCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvRecord maps a row to CSV cells. Absent values become empty cells.
func csvRecord(r domain.ExportRow) []string {
	rec := []string{
		strconv.FormatInt(r.TripID, 10),
		r.TripTitle,
		r.TripStartDate,
		r.TripEndDate,
		string(r.TripCategory),
		"", "", r.EntryTitle, r.EntryText, "", "", "",
		strings.Join(r.Media, "|"),
		strings.Join(r.Tags, "|"),
	}
	if r.EntryID != 0 {
		rec[5] = strconv.FormatInt(r.EntryID, 10)
		rec[6] = string(r.EntryType)
	}
	if r.Timestamp != nil {
		rec[9] = r.Timestamp.UTC().Format(time.RFC3339)
	}
	if r.Latitude != nil {
		rec[10] = strconv.FormatFloat(*r.Latitude, 'f', -1, 64)
	}
	if r.Longitude != nil {
		rec[11] = strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	}
	return rec
}
