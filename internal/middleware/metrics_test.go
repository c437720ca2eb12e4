package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/metrics"
	"github.com/pkordes/trip-journal/internal/middleware"
)

// TestMetricsHandler_recordsRoutePattern verifies that requests are labelled
// with the matched route rather than the raw path.
func TestMetricsHandler_recordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewHTTP(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler(m))
	r.Get("/trips/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/trips/1", "/trips/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP journal_http_requests_total Total number of HTTP requests
# TYPE journal_http_requests_total counter
journal_http_requests_total{method="GET",route="/trips/{id}",status_code="200"} 2
journal_http_requests_total{method="GET",route="unmatched",status_code="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "journal_http_requests_total"))
}
