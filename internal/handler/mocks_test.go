package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/export"
	"github.com/pkordes/trip-journal/internal/handler"
	"github.com/pkordes/trip-journal/internal/watch"
)

// Each mock is a test double for one servicer interface.
// Set only the method fields your test needs.

type mockTripServicer struct {
	list    func(ctx context.Context) ([]domain.Trip, error)
	getByID func(ctx context.Context, id int64) (domain.Trip, error)
	create  func(ctx context.Context, d domain.TripDraft) (domain.Trip, error)
	update  func(ctx context.Context, id int64, p domain.TripPatch) (domain.Trip, error)
	delete  func(ctx context.Context, id int64) error
	observe func(ctx context.Context) (*watch.Subscription[[]domain.Trip], error)
}

func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripServicer) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) Create(ctx context.Context, d domain.TripDraft) (domain.Trip, error) {
	return m.create(ctx, d)
}
func (m *mockTripServicer) Update(ctx context.Context, id int64, p domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, id, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, id int64) error { return m.delete(ctx, id) }
func (m *mockTripServicer) Observe(ctx context.Context) (*watch.Subscription[[]domain.Trip], error) {
	return m.observe(ctx)
}

type mockEntryServicer struct {
	listByTrip func(ctx context.Context, tripID int64) ([]domain.Entry, error)
	getByID    func(ctx context.Context, id int64) (domain.Entry, error)
	create     func(ctx context.Context, d domain.EntryDraft) (domain.Entry, error)
	update     func(ctx context.Context, id int64, p domain.EntryPatch) (domain.Entry, error)
	delete     func(ctx context.Context, id int64) error
}

func (m *mockEntryServicer) ListByTrip(ctx context.Context, tripID int64) ([]domain.Entry, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockEntryServicer) GetByID(ctx context.Context, id int64) (domain.Entry, error) {
	return m.getByID(ctx, id)
}
func (m *mockEntryServicer) Create(ctx context.Context, d domain.EntryDraft) (domain.Entry, error) {
	return m.create(ctx, d)
}
func (m *mockEntryServicer) Update(ctx context.Context, id int64, p domain.EntryPatch) (domain.Entry, error) {
	return m.update(ctx, id, p)
}
func (m *mockEntryServicer) Delete(ctx context.Context, id int64) error { return m.delete(ctx, id) }

type mockTagServicer struct {
	listPaged func(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	create    func(ctx context.Context, name string, color *string) (domain.Tag, error)
	delete    func(ctx context.Context, id int64) error
}

func (m *mockTagServicer) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, prefix, p)
}
func (m *mockTagServicer) Create(ctx context.Context, name string, color *string) (domain.Tag, error) {
	return m.create(ctx, name, color)
}
func (m *mockTagServicer) Delete(ctx context.Context, id int64) error { return m.delete(ctx, id) }

type mockFavoriteServicer struct {
	list     func(ctx context.Context) ([]domain.Favorite, error)
	addTrip  func(ctx context.Context, tripID int64) (domain.Favorite, error)
	addEntry func(ctx context.Context, entryID int64) (domain.Favorite, error)
	remove   func(ctx context.Context, id int64) error
}

func (m *mockFavoriteServicer) List(ctx context.Context) ([]domain.Favorite, error) {
	return m.list(ctx)
}
func (m *mockFavoriteServicer) AddTrip(ctx context.Context, tripID int64) (domain.Favorite, error) {
	return m.addTrip(ctx, tripID)
}
func (m *mockFavoriteServicer) AddEntry(ctx context.Context, entryID int64) (domain.Favorite, error) {
	return m.addEntry(ctx, entryID)
}
func (m *mockFavoriteServicer) Remove(ctx context.Context, id int64) error { return m.remove(ctx, id) }

type mockSearchServicer struct {
	search func(ctx context.Context, q string) ([]domain.SearchHit, error)
	recent func(ctx context.Context) ([]string, error)
}

func (m *mockSearchServicer) Search(ctx context.Context, q string) ([]domain.SearchHit, error) {
	return m.search(ctx, q)
}
func (m *mockSearchServicer) Recent(ctx context.Context) ([]string, error) { return m.recent(ctx) }

type mockStatsServicer struct {
	forTrip func(ctx context.Context, tripID int64) (domain.TripStats, error)
}

func (m *mockStatsServicer) ForTrip(ctx context.Context, tripID int64) (domain.TripStats, error) {
	return m.forTrip(ctx, tripID)
}

type mockExportServicer struct {
	exportTrip func(ctx context.Context, tripID int64, r export.Renderer) (export.Document, error)
	exportDay  func(ctx context.Context, tripID int64, day time.Time, r export.Renderer) (export.Document, error)
}

func (m *mockExportServicer) ExportTrip(ctx context.Context, tripID int64, r export.Renderer) (export.Document, error) {
	return m.exportTrip(ctx, tripID, r)
}
func (m *mockExportServicer) ExportDay(ctx context.Context, tripID int64, day time.Time, r export.Renderer) (export.Document, error) {
	return m.exportDay(ctx, tripID, day, r)
}

type mockBackupServicer struct {
	export      func(ctx context.Context) ([]byte, error)
	imp         func(ctx context.Context, b []byte) (domain.ImportResult, error)
	saveTo      func(ctx context.Context, st backup.Storage) (int, error)
	restoreFrom func(ctx context.Context, st backup.Storage) (domain.ImportResult, error)
}

func (m *mockBackupServicer) Export(ctx context.Context) ([]byte, error) { return m.export(ctx) }
func (m *mockBackupServicer) Import(ctx context.Context, b []byte) (domain.ImportResult, error) {
	return m.imp(ctx, b)
}
func (m *mockBackupServicer) SaveTo(ctx context.Context, st backup.Storage) (int, error) {
	return m.saveTo(ctx, st)
}
func (m *mockBackupServicer) RestoreFrom(ctx context.Context, st backup.Storage) (domain.ImportResult, error) {
	return m.restoreFrom(ctx, st)
}

// compile-time checks: every mock must satisfy its servicer interface.
var (
	_ handler.TripServicer     = (*mockTripServicer)(nil)
	_ handler.EntryServicer    = (*mockEntryServicer)(nil)
	_ handler.TagServicer      = (*mockTagServicer)(nil)
	_ handler.FavoriteServicer = (*mockFavoriteServicer)(nil)
	_ handler.SearchServicer   = (*mockSearchServicer)(nil)
	_ handler.StatsServicer    = (*mockStatsServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
	_ handler.BackupServicer   = (*mockBackupServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// serve sends one request through a Server built from svc and returns the
// recorded response. This mirrors how main.go wires it in production.
func serve(t *testing.T, svc handler.Services, method, target string, body io.Reader, opts ...handler.Option) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.NewServer(svc, opts...).Handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func ptr[T any](v T) *T { return &v }

func tripFixture() domain.Trip {
	created := time.Date(2024, 4, 20, 9, 30, 0, 0, time.UTC)
	return domain.Trip{
		ID:          7,
		Title:       "Paris",
		StartDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
		Category:    domain.CategoryCityBreak,
		Description: ptr("spring break"),
		Tags:        []string{"france"},
		CreatedAt:   created,
		UpdatedAt:   created,
		Progress:    0.5,
	}
}

func entryFixture() domain.Entry {
	at := time.Date(2024, 5, 2, 8, 15, 0, 0, time.UTC)
	return domain.Entry{
		ID:          11,
		TripID:      7,
		Type:        domain.EntryNote,
		Title:       ptr("Morning walk"),
		Text:        ptr("Along the Seine"),
		Coordinates: &domain.Coordinates{Latitude: 48.85, Longitude: 2.35},
		Timestamp:   at,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}
