package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered with the default registry once, at package initialization,
// so handlers and use cases can record without an explicit setup step.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backlink_scans_total",
			Help: "Total number of scan attempts.",
		},
		[]string{"outcome"}, // success, rate_limited, invalid, upstream_error, internal_error
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liveness_probes_total",
			Help: "Total number of target liveness probes.",
		},
		[]string{"method", "result"}, // result: alive, dead, unreachable
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "liveness_probe_duration_seconds",
			Help:    "Duration of a single target probe including fallbacks.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"method"},
	)

	BacklinksFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backlink_edges_fetched",
			Help:    "Number of backlink edges returned per provider call.",
			Buckets: []float64{0, 10, 50, 100, 250, 500, 1000},
		},
	)
)

// ProbeResultLabel classifies a status code for the probes_total counter.
func ProbeResultLabel(status int) string {
	switch {
	case status == 0:
		return "unreachable"
	case status == 404 || status == 410:
		return "dead"
	default:
		return "alive"
	}
}
