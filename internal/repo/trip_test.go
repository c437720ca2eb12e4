package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/testutil"
)

// newTestStore returns a migrated in-memory store. Each test gets its own
// database, so no cleanup SQL is needed.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return testutil.NewStore(t)
}

func ptr[T any](v T) *T { return &v }

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture(id int64) domain.Trip {
	created := time.Date(2025, 5, 20, 9, 30, 0, 123456789, time.UTC)
	return domain.Trip{
		ID:          id,
		Title:       "Summer Tour",
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Category:    domain.CategoryRoadTrip,
		Description: ptr("Coast road"),
		Tags:        []string{"coast", "van"},
		CreatedAt:   created,
		UpdatedAt:   created,
		Progress:    0.25,
	}
}

func entryFixture(id, tripID int64) domain.Entry {
	at := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	return domain.Entry{
		ID:          id,
		TripID:      tripID,
		Type:        domain.EntryPhoto,
		Title:       ptr("Lighthouse"),
		Media:       []string{"media/1.jpg", "media/2.jpg"},
		Coordinates: &domain.Coordinates{Latitude: 43.7, Longitude: -7.9},
		Timestamp:   at,
		Tags:        []string{},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestTripRepo_InsertAndGet(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()

	input := tripFixture(1)
	require.NoError(t, r.Insert(ctx, input))

	got, err := r.GetByID(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, input, got, "every field must survive the store round trip")
}

func TestTripRepo_NilAndEmptyTagsSurvive(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()

	a := tripFixture(1)
	a.Tags = nil
	b := tripFixture(2)
	b.Tags = []string{}
	require.NoError(t, r.Insert(ctx, a))
	require.NoError(t, r.Insert(ctx, b))

	gotA, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	gotB, err := r.GetByID(ctx, 2)
	require.NoError(t, err)

	assert.Nil(t, gotA.Tags)
	assert.NotNil(t, gotB.Tags)
	assert.Empty(t, gotB.Tags)
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))

	_, err := r.GetByID(context.Background(), 42)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Insert_DuplicateID(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, tripFixture(1)))
	err := r.Insert(ctx, tripFixture(1))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripRepo_List_Ordering(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()

	early := tripFixture(2)
	early.Title = "Early"
	late := tripFixture(1)
	late.Title = "Late"
	late.StartDate = early.StartDate.AddDate(0, 1, 0)
	late.EndDate = late.StartDate
	require.NoError(t, r.Insert(ctx, early))
	require.NoError(t, r.Insert(ctx, late))

	byStart, err := r.List(ctx)
	require.NoError(t, err)
	byID, err := r.ListByID(ctx)
	require.NoError(t, err)

	require.Len(t, byStart, 2)
	assert.Equal(t, "Late", byStart[0].Title, "List is start_date descending")
	require.Len(t, byID, 2)
	assert.Equal(t, int64(1), byID[0].ID)
	assert.Equal(t, int64(2), byID[1].ID)
}

func TestTripRepo_List_Empty(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))

	trips, err := r.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestTripRepo_Update(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, tripFixture(1)))

	changed := tripFixture(1)
	changed.Title = "Renamed"
	changed.Description = nil
	changed.CoverImage = ptr("covers/1.jpg")
	changed.UpdatedAt = changed.UpdatedAt.Add(time.Hour)
	require.NoError(t, r.Update(ctx, changed))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, changed, got)
}

func TestTripRepo_Update_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))

	err := r.Update(context.Background(), tripFixture(7))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Update_InvalidDatesRejected(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, tripFixture(1)))

	bad := tripFixture(1)
	bad.EndDate = bad.StartDate.AddDate(0, 0, -1)

	assert.ErrorIs(t, r.Update(ctx, bad), domain.ErrValidation)
}

func TestTripRepo_Upsert(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()

	old := tripFixture(1)
	old.Title = "Old"
	inserted, err := r.Upsert(ctx, old)
	require.NoError(t, err)
	assert.True(t, inserted)

	newer := tripFixture(1)
	newer.Title = "New"
	inserted, err = r.Upsert(ctx, newer)
	require.NoError(t, err)
	assert.False(t, inserted)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "no duplicate row")
	assert.Equal(t, "New", all[0].Title)
}

func TestTripRepo_Upsert_KeepsChildren(t *testing.T) {
	st := newTestStore(t)
	trips, entries := repo.NewTripRepo(st), repo.NewEntryRepo(st)
	ctx := context.Background()

	require.NoError(t, trips.Insert(ctx, tripFixture(1)))
	require.NoError(t, entries.Insert(ctx, entryFixture(10, 1)))

	_, err := trips.Upsert(ctx, tripFixture(1))
	require.NoError(t, err)

	got, err := entries.ListByTrip(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1, "replacing a trip row must not cascade to its entries")
}

func TestTripRepo_Delete(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, tripFixture(1)))

	require.NoError(t, r.Delete(ctx, 1))

	_, err := r.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound, "trip should be gone after delete")
	assert.ErrorIs(t, r.Delete(ctx, 1), domain.ErrNotFound)
}

func TestTripRepo_Delete_Cascades(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	trips := repo.NewTripRepo(st)
	entries := repo.NewEntryRepo(st)
	places := repo.NewPlaceRepo(st)
	route := repo.NewRoutePointRepo(st)
	favs := repo.NewFavoriteRepo(st)
	atts := repo.NewAttachmentRepo(st)

	require.NoError(t, trips.Insert(ctx, tripFixture(1)))
	require.NoError(t, trips.Insert(ctx, tripFixture(2)))
	require.NoError(t, entries.Insert(ctx, entryFixture(10, 1)))
	require.NoError(t, entries.Insert(ctx, entryFixture(20, 2)))
	require.NoError(t, atts.Insert(ctx, domain.Attachment{ID: 100, EntryID: 10, Type: domain.AttachmentPhoto, Path: "a.jpg"}))
	require.NoError(t, places.Insert(ctx, domain.Place{ID: 30, TripID: 1, Name: "Cafe"}))
	require.NoError(t, route.Insert(ctx, domain.RoutePoint{ID: 40, TripID: 1, Timestamp: time.Unix(0, 0)}))
	require.NoError(t, favs.Insert(ctx, domain.Favorite{ID: 50, TripID: ptr(int64(1)), CreatedAt: time.Unix(50, 0)}))
	require.NoError(t, favs.Insert(ctx, domain.Favorite{ID: 51, EntryID: ptr(int64(10)), CreatedAt: time.Unix(51, 0)}))
	require.NoError(t, favs.Insert(ctx, domain.Favorite{ID: 52, EntryID: ptr(int64(20)), CreatedAt: time.Unix(52, 0)}))

	require.NoError(t, trips.Delete(ctx, 1))

	left, err := entries.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(20), left[0].ID)

	a, err := atts.ListByEntry(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, a)

	p, err := places.ListByTrip(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, p)

	n, err := route.CountByTrip(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	f, err := favs.List(ctx)
	require.NoError(t, err)
	require.Len(t, f, 1)
	assert.Equal(t, int64(52), f[0].ID)
}

func TestTripRepo_SetLastExported(t *testing.T) {
	r := repo.NewTripRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, tripFixture(1)))
	at := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, r.SetLastExported(ctx, 1, at))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.LastExportedAt)
	assert.True(t, got.LastExportedAt.Equal(at))
	assert.ErrorIs(t, r.SetLastExported(ctx, 99, at), domain.ErrNotFound)
}
