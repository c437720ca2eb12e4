package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP contains Prometheus metrics for the API server.
type HTTP struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTP creates HTTP metrics and registers them with registry.
func NewHTTP(registry prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"}, // route: /trips/{id}
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "journal_http_request_duration_seconds",
				Help:    "Time taken for HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "journal_http_requests_in_flight",
				Help: "Current number of requests being served, including open event streams",
			},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *HTTP) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.inFlight.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *HTTP) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.inFlight.Collect(ch)
}

// Begin marks a request as in flight. Call the returned func when it ends.
func (m *HTTP) Begin() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// RecordRequest records one finished request. route is the matched route
// pattern, never the raw path, to keep label cardinality bounded.
func (m *HTTP) RecordRequest(method, route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
