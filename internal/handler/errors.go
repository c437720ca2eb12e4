package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
)

// ErrorDetail is the machine-readable code and human-readable message of a
// failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorMapping ties a sentinel to its status code and error code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{backup.ErrNoBackup, http.StatusNotFound, "no_backup"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrReferentialViolation, http.StatusConflict, "referential_violation"},
	{domain.ErrCorruptBackup, http.StatusUnprocessableEntity, "corrupt_backup"},
	{domain.ErrOrphanEntry, http.StatusUnprocessableEntity, "orphan_entry"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
}

// writeError maps err to a status code and writes an ErrorResponse.
// Errors that match no sentinel are logged and reported as 500 without
// their details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, ErrorResponse{Error: ErrorDetail{Code: m.code, Message: unwrapMessage(err, m.err)}})
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		// The client went away; nobody reads the response.
		return
	}
	s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "internal", Message: "internal server error"}})
}

// requestError writes a 422 for a request rejected before reaching the
// service layer, such as a malformed body or parameter.
func requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}})
}

// unwrapMessage extracts the human-readable part after the sentinel.
// e.g. "service.TripService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
