package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
)

func TestFavoriteService_AddTripIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	trip, err := e.trips.Create(ctx, parisDraft())
	require.NoError(t, err)

	first, err := e.favorites.AddTrip(ctx, trip.ID)
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	second, err := e.favorites.AddTrip(ctx, trip.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NotNil(t, first.TripID)
	assert.Equal(t, trip.ID, *first.TripID)
	assert.Nil(t, first.EntryID)
	favs, err := e.favorites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestFavoriteService_MissingTargetIsReferentialViolation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.favorites.AddTrip(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrReferentialViolation)

	_, err = e.favorites.AddEntry(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrReferentialViolation)
}

func TestFavoriteService_IsFavoriteAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	trip, err := e.trips.Create(ctx, parisDraft())
	require.NoError(t, err)
	entry, err := e.entries.Create(ctx, noteDraft(trip.ID, today))
	require.NoError(t, err)

	isFav, err := e.favorites.IsEntryFavorite(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, isFav)

	fav, err := e.favorites.AddEntry(ctx, entry.ID)
	require.NoError(t, err)

	isFav, err = e.favorites.IsEntryFavorite(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, isFav)
	isFav, err = e.favorites.IsTripFavorite(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, isFav)

	require.NoError(t, e.favorites.Remove(ctx, fav.ID))
	isFav, err = e.favorites.IsEntryFavorite(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, isFav)
	assert.ErrorIs(t, e.favorites.Remove(ctx, fav.ID), domain.ErrNotFound)
}

func TestFavoriteService_Observe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	trip, err := e.trips.Create(ctx, parisDraft())
	require.NoError(t, err)
	entry, err := e.entries.Create(ctx, noteDraft(trip.ID, today))
	require.NoError(t, err)

	sub, err := e.favorites.Observe(ctx)
	require.NoError(t, err)
	defer sub.Cancel()
	assert.Empty(t, next(t, sub))

	_, err = e.favorites.AddEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, next(t, sub), 1)

	// Deleting the bookmarked entry removes the favorite too.
	require.NoError(t, e.entries.Delete(ctx, entry.ID))
	assert.Empty(t, next(t, sub))
}
