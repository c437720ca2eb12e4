package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-journal/internal/export"
)

// ExportTrip handles GET /trips/{id}/export.
// Use ?format=csv for CSV; the default is plain text. Exporting stamps the
// trip's last_exported_at.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	renderer, ok := s.renderer(w, r)
	if !ok {
		return
	}
	doc, err := s.svc.Export.ExportTrip(r.Context(), id, renderer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDocument(w, doc)
}

// ExportDay handles GET /trips/{id}/days/{date}/export.
// Only entries whose timestamp falls on date (UTC) are included.
func (s *Server) ExportDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	day, err := pathDate(r, "date")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	renderer, ok := s.renderer(w, r)
	if !ok {
		return
	}
	doc, err := s.svc.Export.ExportDay(r.Context(), id, day, renderer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDocument(w, doc)
}

// renderer resolves ?format=. On failure it writes the error response.
func (s *Server) renderer(w http.ResponseWriter, r *http.Request) (export.Renderer, bool) {
	format, err := queryString(r, "format")
	if err != nil {
		requestError(w, err.Error())
		return nil, false
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return renderer, true
}

func writeDocument(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client may have gone away.
	w.Write(doc.Body)
}
