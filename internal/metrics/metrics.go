// Package metrics provides Prometheus instrumentation for the codex service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamAttempts counts individual HTTP attempts made by the resilient
	// fetcher, partitioned by host and outcome (ok, error, timeout, canceled).
	UpstreamAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_upstream_attempts_total",
		Help: "Upstream HTTP attempts by host and outcome",
	}, []string{"host", "outcome"})

	// CacheLookups counts cache reads by key and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_cache_lookups_total",
		Help: "Cache lookups by key and result",
	}, []string{"key", "result"})

	// SourceFailures counts market data sources that fell back to empty values.
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_source_failures_total",
		Help: "Market data source failures absorbed by the aggregator",
	}, []string{"source"})

	// LedgerOps counts ledger store calls by operation and result.
	LedgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_ledger_operations_total",
		Help: "Ledger store operations by op and result",
	}, []string{"op", "result"})

	// Generations counts generated messages by mode and whether real data was used.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_generations_total",
		Help: "Generated codex messages by mode and data availability",
	}, []string{"mode", "real_data"})

	// Verifications counts verify outcomes (verified, invalid).
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_verifications_total",
		Help: "Verify requests by status",
	}, []string{"status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codex_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Route pattern keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
