// Package metrics holds the domain Prometheus collectors (audit events,
// report generation, stored files). HTTP request metrics live in the middleware package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for report generation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics groups the domain collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	historyEvents  *prometheus.CounterVec
	reports        *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	storedBytes    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		historyEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archive_history_events_total",
				Help: "Audit records appended, by action.",
			},
			[]string{"action"},
		),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archive_reports_generated_total",
				Help: "Report generation attempts, by type, format and outcome.",
			},
			[]string{"report_type", "format", "outcome"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archive_report_generation_seconds",
				Help:    "Time spent building and storing a report file.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		storedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archive_stored_bytes_total",
				Help: "Bytes written to the file store, by kind (document, report).",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.historyEvents, m.reports, m.reportDuration, m.storedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// HistoryRecorded counts one appended audit record.
func (m *Metrics) HistoryRecorded(action string) {
	if m == nil {
		return
	}
	m.historyEvents.WithLabelValues(action).Inc()
}

// ReportGenerated records a generation attempt and its duration.
func (m *Metrics) ReportGenerated(reportType, format, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(reportType, format, outcome).Inc()
	m.reportDuration.WithLabelValues(format).Observe(took.Seconds())
}

// FileStored adds size bytes to the stored-bytes counter for kind.
func (m *Metrics) FileStored(kind string, size int64) {
	if m == nil || size <= 0 {
		return
	}
	m.storedBytes.WithLabelValues(kind).Add(float64(size))
}
