package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
)

func TestSearchService_CaseInsensitiveMostRecentFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	paris, err := e.trips.Create(ctx, parisDraft())
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	d := noteDraft(paris.ID, today)
	d.Title = ptr("Café de Flore")
	flore, err := e.entries.Create(ctx, d)
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	lyon := parisDraft()
	lyon.Title = "Lyon"
	lyon.Description = ptr("A CAFÉ crawl")
	lyonTrip, err := e.trips.Create(ctx, lyon)
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	d = noteDraft(lyonTrip.ID, today)
	d.Title = nil
	d.Text = nil
	d.Tags = []string{"Food", "Cafés"}
	tagged, err := e.entries.Create(ctx, d)
	require.NoError(t, err)

	hits, err := e.search.Search(ctx, "café")

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, domain.SearchHit{Kind: domain.SearchKindEntry, TripID: lyonTrip.ID, EntryID: tagged.ID, UpdatedAt: tagged.UpdatedAt}, hits[0])
	assert.Equal(t, domain.SearchKindTrip, hits[1].Kind)
	assert.Equal(t, lyonTrip.ID, hits[1].TripID)
	assert.Equal(t, "Lyon", hits[1].Title)
	assert.Equal(t, flore.ID, hits[2].EntryID)
	assert.Equal(t, "Café de Flore", hits[2].Title)

	hits, err = e.search.Search(ctx, "PARIS")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, paris.ID, hits[0].TripID)

	hits, err = e.search.Search(ctx, "seine")
	require.NoError(t, err)
	assert.Len(t, hits, 1, "entry text is searched")

	hits, err = e.search.Search(ctx, "tokyo")
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearchService_TiesPutTripsFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	trip, err := e.trips.Create(ctx, parisDraft())
	require.NoError(t, err)
	_, err = e.entries.Create(ctx, noteDraft(trip.ID, today))
	require.NoError(t, err)
	d := noteDraft(trip.ID, today)
	d.Title = ptr("Paris by night")
	_, err = e.entries.Create(ctx, d)
	require.NoError(t, err)

	hits, err := e.search.Search(ctx, "paris")

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.SearchKindTrip, hits[0].Kind)
	assert.Equal(t, domain.SearchKindEntry, hits[1].Kind)
}

func TestSearchService_RecentQueries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := range 12 {
		_, err := e.search.Search(ctx, fmt.Sprintf("q%d", i))
		require.NoError(t, err)
		e.clock.Advance(time.Second)
	}
	_, err := e.search.Search(ctx, "   ")
	require.NoError(t, err)

	recent, err := e.search.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q11", "q10", "q9", "q8", "q7", "q6", "q5", "q4", "q3", "q2"}, recent)

	// Searching again moves a query to the front instead of duplicating it.
	_, err = e.search.Search(ctx, "q5")
	require.NoError(t, err)
	recent, err = e.search.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, domain.RecentQueryLimit)
	assert.Equal(t, "q5", recent[0])
	assert.Equal(t, "q11", recent[1])

	require.NoError(t, e.search.ClearRecent(ctx))
	recent, err = e.search.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSearchService_RecentQueries_PinnedClock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, q := range []string{"zebra", "apple", "mango"} {
		_, err := e.search.Search(ctx, q)
		require.NoError(t, err)
	}

	recent, err := e.search.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mango", "apple", "zebra"}, recent)
}

func TestSearchService_ObserveRecent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sub, err := e.search.ObserveRecent(ctx)
	require.NoError(t, err)
	defer sub.Cancel()
	assert.Empty(t, next(t, sub))

	_, err = e.search.Search(ctx, "louvre")
	require.NoError(t, err)
	assert.Equal(t, []string{"louvre"}, next(t, sub))
}
