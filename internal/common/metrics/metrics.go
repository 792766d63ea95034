// internal/common/metrics/metrics.go
package metrics

import (
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_pipeline_api_requests_total",
			Help: "Physical calls issued to the sales-intelligence API by outcome",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_pipeline_api_retries_total",
			Help: "Retries scheduled after a retryable failure",
		},
		[]string{"endpoint"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_pipeline_api_request_duration_seconds",
			Help:    "Duration of one physical API call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_pipeline_ratelimit_wait_seconds",
			Help:    "Time spent waiting for a dispatch slot",
			Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"limiter"},
	)

	WorkflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_pipeline_workflow_runs_total",
			Help: "Workflow runs by terminal status",
		},
		[]string{"status"},
	)

	WorkflowItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_pipeline_workflow_items_total",
			Help: "Items processed per workflow stage by result",
		},
		[]string{"stage", "result"},
	)
)

var idSegment = regexp.MustCompile(`^[0-9a-fA-F]{8,}$|^[0-9]+$`)

// EndpointLabel collapses identifier path segments so label cardinality stays bounded.
func EndpointLabel(endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if idSegment.MatchString(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
