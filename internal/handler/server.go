// Package handler implements the HTTP surface of the travel journal.
// All handlers are methods on Server and are split into domain-specific files
// (health.go, trip.go, entry.go, ...) sharing the same Server struct.
// Request and response bodies mirror spec/openapi.yaml.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/export"
	"github.com/pkordes/trip-journal/internal/watch"
)

// TripServicer defines the business operations the trip handlers depend on.
// Interfaces live here, in the consumer package, so tests can inject mocks
// without a database.
type TripServicer interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (domain.Trip, error)
	Create(ctx context.Context, d domain.TripDraft) (domain.Trip, error)
	Update(ctx context.Context, id int64, p domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, id int64) error
	Observe(ctx context.Context) (*watch.Subscription[[]domain.Trip], error)
}

// EntryServicer defines the entry operations used by the handlers.
type EntryServicer interface {
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Entry, error)
	GetByID(ctx context.Context, id int64) (domain.Entry, error)
	Create(ctx context.Context, d domain.EntryDraft) (domain.Entry, error)
	Update(ctx context.Context, id int64, p domain.EntryPatch) (domain.Entry, error)
	Delete(ctx context.Context, id int64) error
}

// TagServicer defines the tag catalog operations used by the handlers.
type TagServicer interface {
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	Create(ctx context.Context, name string, color *string) (domain.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// FavoriteServicer defines the bookmark operations used by the handlers.
type FavoriteServicer interface {
	List(ctx context.Context) ([]domain.Favorite, error)
	AddTrip(ctx context.Context, tripID int64) (domain.Favorite, error)
	AddEntry(ctx context.Context, entryID int64) (domain.Favorite, error)
	Remove(ctx context.Context, id int64) error
}

// SearchServicer defines the search operations used by the handlers.
type SearchServicer interface {
	Search(ctx context.Context, query string) ([]domain.SearchHit, error)
	Recent(ctx context.Context) ([]string, error)
}

// StatsServicer computes trip summaries.
type StatsServicer interface {
	ForTrip(ctx context.Context, tripID int64) (domain.TripStats, error)
}

// ExportServicer renders trips and days into shareable documents.
type ExportServicer interface {
	ExportTrip(ctx context.Context, tripID int64, r export.Renderer) (export.Document, error)
	ExportDay(ctx context.Context, tripID int64, day time.Time, r export.Renderer) (export.Document, error)
}

// BackupServicer exports and restores whole-journal snapshots.
type BackupServicer interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, b []byte) (domain.ImportResult, error)
	SaveTo(ctx context.Context, st backup.Storage) (int, error)
	RestoreFrom(ctx context.Context, st backup.Storage) (domain.ImportResult, error)
}

// Services bundles the dependencies of Server. Nil services leave their
// routes unregistered.
type Services struct {
	Trips     TripServicer
	Entries   EntryServicer
	Tags      TagServicer
	Favorites FavoriteServicer
	Search    SearchServicer
	Stats     StatsServicer
	Export    ExportServicer
	Backup    BackupServicer
}

// Server implements every API endpoint.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	svc           Services
	log           *slog.Logger
	target        backup.Storage
	importTimeout time.Duration
	spec          []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// WithBackupTarget sets the storage behind POST /backup/save and
// POST /backup/restore. Without it those routes answer 503.
func WithBackupTarget(st backup.Storage) Option { return func(s *Server) { s.target = st } }

// WithImportTimeout bounds how long an import may take, including the wait
// for a running import to finish.
func WithImportTimeout(d time.Duration) Option { return func(s *Server) { s.importTimeout = d } }

// WithSpec sets the document served at GET /openapi.yaml.
func WithSpec(b []byte) Option { return func(s *Server) { s.spec = b } }

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts ...Option) *Server {
	s := &Server{svc: svc, log: slog.Default(), importTimeout: 2 * time.Minute, closed: make(chan struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{})
}

// CloseStreams ends every open event stream. Regular requests are not
// affected. It is safe to call more than once.
func (s *Server) CloseStreams() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	if s.spec != nil {
		r.Get("/openapi.yaml", s.GetSpec)
	}

	if s.svc.Trips != nil {
		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/stream", s.StreamTrips)
		r.Get("/trips/{id}", s.GetTrip)
		r.Patch("/trips/{id}", s.UpdateTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)
	}
	if s.svc.Stats != nil {
		r.Get("/trips/{id}/stats", s.GetTripStats)
	}
	if s.svc.Export != nil {
		r.Get("/trips/{id}/export", s.ExportTrip)
		r.Get("/trips/{id}/days/{date}/export", s.ExportDay)
	}
	if s.svc.Entries != nil {
		r.Get("/trips/{id}/entries", s.ListEntries)
		r.Post("/trips/{id}/entries", s.CreateEntry)
		r.Get("/entries/{id}", s.GetEntry)
		r.Patch("/entries/{id}", s.UpdateEntry)
		r.Delete("/entries/{id}", s.DeleteEntry)
	}
	if s.svc.Tags != nil {
		r.Get("/tags", s.ListTags)
		r.Post("/tags", s.CreateTag)
		r.Delete("/tags/{id}", s.DeleteTag)
	}
	if s.svc.Favorites != nil {
		r.Get("/favorites", s.ListFavorites)
		r.Post("/favorites", s.AddFavorite)
		r.Delete("/favorites/{id}", s.RemoveFavorite)
	}
	if s.svc.Search != nil {
		r.Get("/search", s.Search)
		r.Get("/search/recent", s.RecentSearches)
	}
	if s.svc.Backup != nil {
		r.Get("/backup", s.ExportBackup)
		r.Post("/backup", s.ImportBackup)
		r.Post("/backup/save", s.SaveBackup)
		r.Post("/backup/restore", s.RestoreBackup)
	}
}

// Handler returns a chi router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
