package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/export"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/watch"
)

// ExportService renders a trip or a single day of a trip through an
// export.Renderer. It only reads journal data, apart from stamping the
// trip's LastExportedAt after a full-trip export.
type ExportService struct {
	core    *Core
	trips   repo.TripRepo
	entries repo.EntryRepo
}

// NewExportService constructs an ExportService over the core's store.
func NewExportService(c *Core) *ExportService {
	return &ExportService{core: c, trips: repo.NewTripRepo(c.store), entries: repo.NewEntryRepo(c.store)}
}

// ExportTrip renders the whole trip and records the export time on it.
func (s *ExportService) ExportTrip(ctx context.Context, tripID int64, r export.Renderer) (export.Document, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}
	entries, err := s.entries.ListByTrip(ctx, tripID)
	if err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}
	var buf bytes.Buffer
	if err := r.RenderTrip(&buf, trip, entries); err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportTrip: render: %w", err)
	}
	if err := s.trips.SetLastExported(ctx, tripID, s.core.Now()); err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}
	s.core.notify(ctx, watch.Trips)
	return export.Document{
		Name:        export.FileName(trip, nil, r),
		ContentType: r.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// ExportDay renders the entries of one UTC calendar day of a trip.
func (s *ExportService) ExportDay(ctx context.Context, tripID int64, day time.Time, r export.Renderer) (export.Document, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportDay: %w", err)
	}
	day = domain.DateOf(day)
	entries, err := s.entries.ListBetween(ctx, tripID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportDay: %w", err)
	}
	var buf bytes.Buffer
	if err := r.RenderDay(&buf, trip, day, entries); err != nil {
		return export.Document{}, fmt.Errorf("service.ExportService.ExportDay: render: %w", err)
	}
	return export.Document{
		Name:        export.FileName(trip, &day, r),
		ContentType: r.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
