package handler

import "net/http"

// Search handles GET /search?q=.
// A blank query returns an empty list.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := queryString(r, "q")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	hits, err := s.svc.Search.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(hits, hitToResponse))
}

// RecentSearches handles GET /search/recent, most recent first.
func (s *Server) RecentSearches(w http.ResponseWriter, r *http.Request) {
	qs, err := s.svc.Search.Recent(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(qs))
}
