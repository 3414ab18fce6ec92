// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPCRequests counts finished RPCs by procedure and status code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spendboard",
		Name:      "rpc_requests_total",
		Help:      "RPC calls by procedure and status code.",
	}, []string{"procedure", "code"})

	// RPCDuration observes RPC latency.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "spendboard",
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	// ImportRows counts CSV data rows by detected schema and outcome
	// (imported or skipped).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spendboard",
		Name:      "import_rows_total",
		Help:      "CSV data rows processed by schema and outcome.",
	}, []string{"schema", "outcome"})

	// ImportFailures counts rejected imports by reason.
	ImportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spendboard",
		Name:      "import_failures_total",
		Help:      "Rejected CSV imports by reason.",
	}, []string{"reason"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
