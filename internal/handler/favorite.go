package handler

import (
	"net/http"

	"github.com/pkordes/trip-journal/internal/domain"
)

// ListFavorites handles GET /favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.svc.Favorites.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(favs, favoriteToResponse))
}

// AddFavorite handles POST /favorites.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var body AddFavoriteRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}

	var (
		fav domain.Favorite
		err error
	)
	switch {
	case body.TripID != nil && body.EntryID == nil:
		fav, err = s.svc.Favorites.AddTrip(r.Context(), *body.TripID)
	case body.EntryID != nil && body.TripID == nil:
		fav, err = s.svc.Favorites.AddEntry(r.Context(), *body.EntryID)
	default:
		requestError(w, "exactly one of trip_id and entry_id is required")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, favoriteToResponse(fav))
}

// RemoveFavorite handles DELETE /favorites/{id}.
func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.svc.Favorites.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
