// Package metrics provides Prometheus collectors for the journal's backup
// and restore operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error type labels for failed operations.
const (
	ErrorCorrupt     = "corrupt"
	ErrorOrphan      = "orphan"
	ErrorUnavailable = "store_unavailable"
	ErrorCanceled    = "canceled"
	ErrorOther       = "other"
)

// Backup contains Prometheus metrics for snapshot export and import.
type Backup struct {
	exportsTotal     *prometheus.CounterVec
	importsTotal     *prometheus.CounterVec
	importErrors     *prometheus.CounterVec
	importDuration   prometheus.Histogram
	snapshotBytes    prometheus.Gauge
	rowsRestored     *prometheus.CounterVec
	lastSuccessfulAt prometheus.Gauge
}

// NewBackup creates backup metrics and registers them with registry.
func NewBackup(registry prometheus.Registerer) (*Backup, error) {
	m := newBackup()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewUnregisteredBackup creates backup metrics that are not exported
// anywhere. The CLI uses it where no /metrics endpoint exists.
func NewUnregisteredBackup() *Backup {
	return newBackup()
}

func newBackup() *Backup {
	return &Backup{
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_backup_exports_total",
				Help: "Total number of snapshot exports",
			},
			[]string{"status"},
		),
		importsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_backup_imports_total",
				Help: "Total number of snapshot imports",
			},
			[]string{"status"},
		),
		importErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_backup_import_errors_total",
				Help: "Total number of failed snapshot imports by error type",
			},
			[]string{"error_type"},
		),
		importDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "journal_backup_import_duration_seconds",
				Help: "Time taken to decode and restore a snapshot",
				// 1ms to ~16s
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
		snapshotBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "journal_backup_snapshot_bytes",
				Help: "Size of the most recently exported snapshot",
			},
		),
		rowsRestored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_backup_rows_restored_total",
				Help: "Rows written by imports",
			},
			[]string{"table", "action"}, // action: inserted, replaced
		),
		lastSuccessfulAt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "journal_backup_last_success_timestamp_seconds",
				Help: "Unix time of the last successful export or import",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Backup) Describe(ch chan<- *prometheus.Desc) {
	m.exportsTotal.Describe(ch)
	m.importsTotal.Describe(ch)
	m.importErrors.Describe(ch)
	m.importDuration.Describe(ch)
	m.snapshotBytes.Describe(ch)
	m.rowsRestored.Describe(ch)
	m.lastSuccessfulAt.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Backup) Collect(ch chan<- prometheus.Metric) {
	m.exportsTotal.Collect(ch)
	m.importsTotal.Collect(ch)
	m.importErrors.Collect(ch)
	m.importDuration.Collect(ch)
	m.snapshotBytes.Collect(ch)
	m.rowsRestored.Collect(ch)
	m.lastSuccessfulAt.Collect(ch)
}

// RecordExport records an export attempt and, on success, the snapshot size.
func (m *Backup) RecordExport(size int, err error, at time.Time) {
	if err != nil {
		m.exportsTotal.WithLabelValues(StatusError).Inc()
		return
	}
	m.exportsTotal.WithLabelValues(StatusSuccess).Inc()
	m.snapshotBytes.Set(float64(size))
	m.lastSuccessfulAt.Set(float64(at.Unix()))
}

// RecordImport records an import attempt. errorType is ignored on success.
func (m *Backup) RecordImport(errorType string, d time.Duration, at time.Time, success bool) {
	m.importDuration.Observe(d.Seconds())
	if !success {
		m.importsTotal.WithLabelValues(StatusError).Inc()
		m.importErrors.WithLabelValues(errorType).Inc()
		return
	}
	m.importsTotal.WithLabelValues(StatusSuccess).Inc()
	m.lastSuccessfulAt.Set(float64(at.Unix()))
}

// RecordRows adds restored row counts for table.
func (m *Backup) RecordRows(table string, inserted, replaced int) {
	m.rowsRestored.WithLabelValues(table, "inserted").Add(float64(inserted))
	m.rowsRestored.WithLabelValues(table, "replaced").Add(float64(replaced))
}
