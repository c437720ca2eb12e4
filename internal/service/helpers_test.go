package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/service"
	"github.com/pkordes/trip-journal/internal/watch"
	"github.com/pkordes/trip-journal/testutil"
)

// today is the pinned "now" for every service test: midday on the third
// day of the Paris trip.
var today = time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// env bundles every service over one fresh in-memory store.
type env struct {
	core      *service.Core
	clock     *clock
	trips     *service.TripService
	entries   *service.EntryService
	places    *service.PlaceService
	route     *service.RoutePointService
	favorites *service.FavoriteService
	tags      *service.TagService
	settings  *service.SettingsService
	themes    *service.ThemeService
	search    *service.SearchService
	stats     *service.StatsService
	backup    *service.BackupService
	export    *service.ExportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clk := &clock{now: today}
	core := service.NewCore(testutil.NewStore(t),
		service.WithClock(clk.Now),
		service.WithIDs(service.SequentialIDs(100)),
	)
	settings := service.NewSettingsService(core)
	return &env{
		core:      core,
		clock:     clk,
		trips:     service.NewTripService(core),
		entries:   service.NewEntryService(core),
		places:    service.NewPlaceService(core),
		route:     service.NewRoutePointService(core),
		favorites: service.NewFavoriteService(core),
		tags:      service.NewTagService(core),
		settings:  settings,
		themes:    service.NewThemeService(core),
		search:    service.NewSearchService(core),
		stats:     service.NewStatsService(core),
		backup:    service.NewBackupService(core, settings, nil),
		export:    service.NewExportService(core),
	}
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parisDraft() domain.TripDraft {
	return domain.TripDraft{
		Title:     "Paris",
		StartDate: day(2024, 5, 1),
		EndDate:   day(2024, 5, 5),
		Category:  domain.CategoryCityBreak,
		Tags:      []string{"france"},
	}
}

func noteDraft(tripID int64, at time.Time) domain.EntryDraft {
	return domain.EntryDraft{
		TripID:    tripID,
		Type:      domain.EntryNote,
		Title:     ptr("Morning walk"),
		Text:      ptr("Along the Seine"),
		Timestamp: at,
	}
}

// next returns the next snapshot from sub, failing the test if none arrives.
func next[V any](t *testing.T, sub *watch.Subscription[V]) V {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}
	var zero V
	return zero
}

// assertQuiet fails if sub holds an unread snapshot.
func assertQuiet[V any](t *testing.T, sub *watch.Subscription[V]) {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected snapshot: %v", v)
		}
	default:
	}
}
