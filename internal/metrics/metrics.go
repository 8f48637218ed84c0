// Package metrics exports query counters and latencies to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nutsquery"

// Metrics holds every collector of one engine.
type Metrics struct {
	// Query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	RowsScanned   *prometheus.CounterVec
	RowsReturned  *prometheus.CounterVec

	// Failure metrics
	TokenRejections *prometheus.CounterVec
	PlanningErrors  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of pages served, by access path",
			},
			[]string{"path"},
		),

		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of a page from planning to token emission",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
			},
			[]string{"path"},
		),

		RowsScanned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_scanned_total",
				Help:      "Store entries read while serving pages",
			},
			[]string{"path"},
		),

		RowsReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_returned_total",
				Help:      "Rows returned to callers",
			},
			[]string{"path"},
		),

		TokenRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_rejections_total",
				Help:      "Continuation tokens rejected, by gate",
			},
			[]string{"kind"},
		),

		PlanningErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "planning_errors_total",
				Help:      "Queries refused before touching storage",
			},
			[]string{"reason"},
		),
	}
}

// ObserveQuery records one served page.
func (m *Metrics) ObserveQuery(path string, scanned, returned int, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(path).Inc()
	m.QueryDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	m.RowsScanned.WithLabelValues(path).Add(float64(scanned))
	m.RowsReturned.WithLabelValues(path).Add(float64(returned))
}

func (m *Metrics) TokenRejected(kind string) {
	m.TokenRejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) PlanningFailed(reason string) {
	m.PlanningErrors.WithLabelValues(reason).Inc()
}
