package middleware

import (
	"encoding/json"
	"net/http"
)

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests exceeding the limit are rejected with 413
// Request Entity Too Large before reaching the next handler.
//
// A request that declares its length is checked up front. Otherwise the body
// is wrapped in http.MaxBytesReader and the read fails once the limit is
// passed, which handlers report as 413 themselves.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				//nolint:errcheck // the client may have gone away.
				json.NewEncoder(w).Encode(map[string]map[string]string{
					"error": {"code": "too_large", "message": "request body too large"},
				})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
