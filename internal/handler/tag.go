package handler

import (
	"net/http"

	"github.com/pkordes/trip-journal/internal/domain"
)

// ListTags handles GET /tags.
// Supports ?q= for prefix search, plus ?page= and ?limit=.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	prefix, err := queryString(r, "q")
	if err != nil {
		requestError(w, err.Error())
		return
	}
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

	tags, total, err := s.svc.Tags.ListPaged(r.Context(), prefix, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TagList{
		Data:       mapSlice(tags, tagToResponse),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// CreateTag handles POST /tags.
// Creating a name that already exists, in any case, returns the existing tag.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var body CreateTagRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err.Error())
		return
	}
	tag, err := s.svc.Tags.Create(r.Context(), body.Name, body.Color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tagToResponse(tag))
}

// DeleteTag handles DELETE /tags/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.svc.Tags.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
