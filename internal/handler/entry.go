package handler

import "net/http"

// CreateEntry handles POST /trips/{id}/entries.
// A trip that does not exist answers 409, since the entry would dangle.
func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body CreateEntryRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.svc.Entries.Create(r.Context(), requestToEntryDraft(tripID, body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryToResponse(created))
}

// ListEntries handles GET /trips/{id}/entries.
// Entries are ordered by timestamp, oldest first.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	entries, err := s.svc.Entries.ListByTrip(r.Context(), tripID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(entries, entryToResponse))
}

// GetEntry handles GET /entries/{id}.
func (s *Server) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	e, err := s.svc.Entries.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(e))
}

// UpdateEntry handles PATCH /entries/{id}.
func (s *Server) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body UpdateEntryRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}
	updated, err := s.svc.Entries.Update(r.Context(), id, requestToEntryPatch(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(updated))
}

// DeleteEntry handles DELETE /entries/{id}.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.svc.Entries.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
