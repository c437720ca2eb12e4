package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/handler"
)

func entriesOnly(m *mockEntryServicer) handler.Services { return handler.Services{Entries: m} }

func TestCreateEntry_201(t *testing.T) {
	var got domain.EntryDraft
	svc := &mockEntryServicer{
		create: func(_ context.Context, d domain.EntryDraft) (domain.Entry, error) {
			got = d
			return entryFixture(), nil
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodPost, "/trips/7/entries", jsonBody(t, map[string]any{
		"type":        "note",
		"title":       "Morning walk",
		"text":        "Along the Seine",
		"timestamp":   "2024-05-02T10:15:00+02:00",
		"coordinates": map[string]float64{"latitude": 48.85, "longitude": 2.35},
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), got.TripID)
	assert.Equal(t, domain.EntryNote, got.Type)
	assert.True(t, got.Timestamp.Equal(time.Date(2024, 5, 2, 8, 15, 0, 0, time.UTC)))
	require.NotNil(t, got.Coordinates)
	assert.InDelta(t, 48.85, got.Coordinates.Latitude, 1e-9)

	resp := decode[handler.Entry](t, rec)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "note", resp.Type)
	assert.Equal(t, []string{}, resp.Media)
	require.NotNil(t, resp.Coordinates)
	assert.InDelta(t, 2.35, resp.Coordinates.Longitude, 1e-9)
}

func TestCreateEntry_NoTimestampLeavesZero(t *testing.T) {
	var got domain.EntryDraft
	svc := &mockEntryServicer{
		create: func(_ context.Context, d domain.EntryDraft) (domain.Entry, error) {
			got = d
			return entryFixture(), nil
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodPost, "/trips/7/entries", jsonBody(t, map[string]any{"type": "photo"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, got.Timestamp.IsZero())
	assert.Nil(t, got.Coordinates)
}

func TestCreateEntry_409_MissingTrip(t *testing.T) {
	svc := &mockEntryServicer{
		create: func(context.Context, domain.EntryDraft) (domain.Entry, error) {
			return domain.Entry{}, fmt.Errorf("service.EntryService.Create: %w: trip 99 does not exist", domain.ErrReferentialViolation)
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodPost, "/trips/99/entries", jsonBody(t, map[string]any{"type": "note"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "referential_violation", resp.Error.Code)
	assert.Equal(t, "trip 99 does not exist", resp.Error.Message)
}

func TestCreateEntry_422_Coordinates(t *testing.T) {
	svc := &mockEntryServicer{
		create: func(context.Context, domain.EntryDraft) (domain.Entry, error) {
			return domain.Entry{}, fmt.Errorf("%w: latitude 91 out of range", domain.ErrValidation)
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodPost, "/trips/7/entries", jsonBody(t, map[string]any{
		"type":        "note",
		"coordinates": map[string]float64{"latitude": 91, "longitude": 0},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListEntries_200(t *testing.T) {
	first, second := entryFixture(), entryFixture()
	second.ID = 12
	second.Timestamp = second.Timestamp.Add(time.Hour)
	svc := &mockEntryServicer{
		listByTrip: func(_ context.Context, tripID int64) ([]domain.Entry, error) {
			require.Equal(t, int64(7), tripID)
			return []domain.Entry{first, second}, nil
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodGet, "/trips/7/entries", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]handler.Entry](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, int64(11), resp[0].ID)
	assert.Equal(t, int64(12), resp[1].ID)
}

func TestListEntries_404_MissingTrip(t *testing.T) {
	svc := &mockEntryServicer{
		listByTrip: func(context.Context, int64) ([]domain.Entry, error) { return nil, domain.ErrNotFound },
	}

	rec := serve(t, entriesOnly(svc), http.MethodGet, "/trips/99/entries", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEntry(t *testing.T) {
	svc := &mockEntryServicer{
		getByID: func(_ context.Context, id int64) (domain.Entry, error) {
			if id == 11 {
				return entryFixture(), nil
			}
			return domain.Entry{}, domain.ErrNotFound
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodGet, "/entries/11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), decode[handler.Entry](t, rec).TripID)

	rec = serve(t, entriesOnly(svc), http.MethodGet, "/entries/12", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEntry_ClearCoordinates(t *testing.T) {
	var got domain.EntryPatch
	svc := &mockEntryServicer{
		update: func(_ context.Context, id int64, p domain.EntryPatch) (domain.Entry, error) {
			require.Equal(t, int64(11), id)
			got = p
			return p.Apply(entryFixture()), nil
		},
	}

	rec := serve(t, entriesOnly(svc), http.MethodPatch, "/entries/11", jsonBody(t, map[string]any{
		"clear_coordinates": true,
		"tags":              []string{"seine"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.ClearCoordinates)
	assert.Nil(t, got.Title)
	require.NotNil(t, got.Tags)
	assert.Equal(t, []string{"seine"}, *got.Tags)

	resp := decode[handler.Entry](t, rec)
	assert.Nil(t, resp.Coordinates)
	assert.Equal(t, []string{"seine"}, resp.Tags)
}

func TestDeleteEntry(t *testing.T) {
	svc := &mockEntryServicer{
		delete: func(_ context.Context, id int64) error {
			if id == 11 {
				return nil
			}
			return domain.ErrNotFound
		},
	}

	assert.Equal(t, http.StatusNoContent, serve(t, entriesOnly(svc), http.MethodDelete, "/entries/11", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(t, entriesOnly(svc), http.MethodDelete, "/entries/12", nil).Code)
}
