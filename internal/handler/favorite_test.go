package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/handler"
)

func favoriteMock() *mockFavoriteServicer {
	at := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	return &mockFavoriteServicer{
		list: func(context.Context) ([]domain.Favorite, error) {
			return []domain.Favorite{{ID: 1, TripID: ptr(int64(7)), CreatedAt: at}}, nil
		},
		addTrip: func(_ context.Context, id int64) (domain.Favorite, error) {
			if id != 7 {
				return domain.Favorite{}, domain.ErrReferentialViolation
			}
			return domain.Favorite{ID: 2, TripID: &id, CreatedAt: at}, nil
		},
		addEntry: func(_ context.Context, id int64) (domain.Favorite, error) {
			return domain.Favorite{ID: 3, EntryID: &id, CreatedAt: at}, nil
		},
		remove: func(_ context.Context, id int64) error {
			if id != 1 {
				return domain.ErrNotFound
			}
			return nil
		},
	}
}

func TestListFavorites(t *testing.T) {
	rec := serve(t, handler.Services{Favorites: favoriteMock()}, http.MethodGet, "/favorites", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]handler.Favorite](t, rec)
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].TripID)
	assert.Equal(t, int64(7), *resp[0].TripID)
	assert.Nil(t, resp[0].EntryID)
}

func TestAddFavorite(t *testing.T) {
	svc := handler.Services{Favorites: favoriteMock()}

	rec := serve(t, svc, http.MethodPost, "/favorites", jsonBody(t, map[string]any{"trip_id": 7}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2), decode[handler.Favorite](t, rec).ID)

	rec = serve(t, svc, http.MethodPost, "/favorites", jsonBody(t, map[string]any{"entry_id": 11}))
	require.Equal(t, http.StatusCreated, rec.Code)
	fav := decode[handler.Favorite](t, rec)
	require.NotNil(t, fav.EntryID)
	assert.Equal(t, int64(11), *fav.EntryID)
}

func TestAddFavorite_Errors(t *testing.T) {
	svc := handler.Services{Favorites: favoriteMock()}

	rec := serve(t, svc, http.MethodPost, "/favorites", jsonBody(t, map[string]any{"trip_id": 8}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/favorites", jsonBody(t, map[string]any{"trip_id": 7, "entry_id": 11}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/favorites", jsonBody(t, map[string]any{}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRemoveFavorite(t *testing.T) {
	svc := handler.Services{Favorites: favoriteMock()}

	assert.Equal(t, http.StatusNoContent, serve(t, svc, http.MethodDelete, "/favorites/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(t, svc, http.MethodDelete, "/favorites/2", nil).Code)
}
