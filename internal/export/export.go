// Package export renders a single trip, or a single day of a trip, into a
// shareable document. Renderers only read the data they are given.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
)

// Renderer turns journal data into document bytes.
type Renderer interface {
	// ContentType is the MIME type of the rendered document.
	ContentType() string
	// FileExt is the file name extension, including the dot.
	FileExt() string
	// RenderTrip writes a document covering the trip and all its entries.
	RenderTrip(w io.Writer, trip domain.Trip, entries []domain.Entry) error
	// RenderDay writes a document covering one calendar day of the trip.
	RenderDay(w io.Writer, trip domain.Trip, day time.Time, entries []domain.Entry) error
}

// Document is a rendered export ready to be shared.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
}

// Format names a built-in renderer.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// ForFormat returns the renderer for f. An empty format means text.
func ForFormat(f string) (Renderer, error) {
	switch Format(strings.ToLower(f)) {
	case "", FormatText:
		return TextRenderer{}, nil
	case FormatCSV:
		return CSVRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, f)
	}
}

// FileName suggests a download name such as "paris-2024-05-01.txt".
func FileName(trip domain.Trip, day *time.Time, r Renderer) string {
	slug := slugify(trip.Title)
	if slug == "" {
		slug = fmt.Sprintf("trip-%d", trip.ID)
	}
	d := trip.StartDate
	if day != nil {
		d = *day
	}
	return slug + "-" + d.Format(time.DateOnly) + r.FileExt()
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
