// Package metrics provides Prometheus metrics for the verification
// service. It exports HTTP request metrics plus counters for case
// processing and verification outcomes.
//
// All metrics are registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	CasesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_processed_total",
			Help: "Cases processed through the full pipeline",
		},
		[]string{"outcome"},
	)

	DocumentsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_extracted_total",
			Help: "Documents run through text extraction and field parsing",
		},
		[]string{"variant", "outcome"},
	)

	VerificationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verification_overall_score",
			Help:    "Overall verification score distribution",
			Buckets: []float64{50, 60, 70, 80, 85, 90, 95, 100},
		},
	)

	VerificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verification_duration_seconds",
			Help:    "Time spent reconciling a case's three documents",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(CasesProcessedTotal)
	prometheus.MustRegister(DocumentsExtractedTotal)
	prometheus.MustRegister(VerificationScore)
	prometheus.MustRegister(VerificationDuration)
}
