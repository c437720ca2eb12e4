// Package middleware provides reusable HTTP middleware for the journal API.
package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// corsPreflightMaxAge is how long, in seconds, browsers may cache a preflight.
const corsPreflightMaxAge = 600

// NewCORSHandler lets the listed origins (full scheme + host, no trailing
// slash) call the journal API from a browser.
//
// Last-Event-ID is allowed so an EventSource on /trips/stream can reconnect.
// The request id and Content-Disposition are exposed so clients can correlate
// failures with server logs and name backup and export downloads.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", chimiddleware.RequestIDHeader},
		MaxAge:         corsPreflightMaxAge,
	})
	return c.Handler
}
