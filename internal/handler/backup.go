package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-journal/internal/backup"
)

// ExportBackup handles GET /backup.
// The body is an encoded snapshot of every trip and entry.
func (s *Server) ExportBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Backup.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": backup.DefaultFileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client may have gone away.
	w.Write(b)
}

// ImportBackup handles POST /backup.
// The raw request body is the snapshot. Corrupt input and entries that
// reference a missing trip answer 422 and leave the store untouched.
func (s *Server) ImportBackup(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{Code: "too_large", Message: "request body too large"}})
			return
		}
		requestError(w, "unreadable request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.importTimeout)
	defer cancel()

	res, err := s.svc.Backup.Import(ctx, b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importToResponse(res))
}

// SaveBackup handles POST /backup/save.
// It writes a fresh snapshot to the configured backup target.
func (s *Server) SaveBackup(w http.ResponseWriter, r *http.Request) {
	if s.target == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrorDetail{Code: "no_target", Message: "no backup target configured"}})
		return
	}
	n, err := s.svc.Backup.SaveTo(r.Context(), s.target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResult{Target: s.target.Name(), Bytes: n})
}

// RestoreBackup handles POST /backup/restore.
// It imports the snapshot held by the configured backup target.
func (s *Server) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if s.target == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrorDetail{Code: "no_target", Message: "no backup target configured"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.importTimeout)
	defer cancel()

	res, err := s.svc.Backup.RestoreFrom(ctx, s.target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importToResponse(res))
}
