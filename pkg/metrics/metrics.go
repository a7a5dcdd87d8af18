// Package metrics provides Prometheus instrumentation for the frameline
// ingestion pipeline: rows ingested, parse failures, end-to-end ingest
// latency, and the current depth of the bounded work queue. The data
// structures themselves carry no instrumentation; only the pipeline reports
// here.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsIngested tracks rows successfully assembled into tables.
	// Labels: source (reader kind, e.g. "csv")
	RowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameline_rows_ingested_total",
			Help: "Total number of rows assembled into tables",
		},
		[]string{"source"},
	)

	// ParseErrors tracks malformed rows that aborted an ingestion run.
	ParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameline_parse_errors_total",
			Help: "Total number of malformed rows encountered during ingestion",
		},
		[]string{"source"},
	)

	// IngestDuration tracks the distribution of whole-source ingest times.
	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frameline_ingest_duration_seconds",
			Help:    "End-to-end ingestion duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"source"},
	)

	// QueueDepth tracks the instantaneous depth of the bounded work queue.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "frameline_ingest_queue_depth",
			Help: "Current depth of the ingestion work queue",
		},
		[]string{"source"},
	)
)

// Timer measures one operation's duration for histogram observation.
type Timer struct {
	start time.Time
}

// NewTimer starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveIngest records the elapsed time on the ingest duration histogram.
func (t *Timer) ObserveIngest(source string) {
	IngestDuration.WithLabelValues(source).Observe(time.Since(t.start).Seconds())
}
