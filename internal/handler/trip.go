package handler

import (
	"net/http"

	"github.com/pkordes/trip-journal/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}
	draft, err := requestToTripDraft(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.svc.Trips.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=50, max=200).
// Trips are ordered by start date, newest first.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, err := s.svc.Trips.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lo, hi := params.Window(len(trips))
	writeJSON(w, http.StatusOK, TripList{
		Data: mapSlice(trips[lo:hi], tripToResponse),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: len(trips),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	trip, err := s.svc.Trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body UpdateTripRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}

	updated, err := s.svc.Trips.Update(r.Context(), id, requestToTripPatch(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
// Entries, places, route points, and favorites of the trip go with it.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.svc.Trips.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTripStats handles GET /trips/{id}/stats.
func (s *Server) GetTripStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	st, err := s.svc.Stats.ForTrip(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}
