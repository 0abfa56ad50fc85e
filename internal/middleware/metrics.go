package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	wordSearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "word_search_total",
			Help: "Total number of word searches",
		},
		[]string{"cache_hit"},
	)

	studyActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_actions_total",
			Help: "Total number of mastery-affecting study actions",
		},
		[]string{"action"},
	)

	snapshotSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_sync_total",
			Help: "Total number of snapshot sync operations",
		},
		[]string{"kind", "status"},
	)

	llmProxyCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_proxy_calls_total",
			Help: "Total number of LLM proxy calls",
		},
		[]string{"status"},
	)

	llmProxyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_proxy_duration_seconds",
			Help:    "LLM proxy call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordWordSearch records a word search and whether any cache tier hit.
func RecordWordSearch(cacheHit bool) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	wordSearchTotal.WithLabelValues(hit).Inc()
}

// RecordStudyAction records one mastery-affecting action.
func RecordStudyAction(action string) {
	studyActionsTotal.WithLabelValues(action).Inc()
}

// RecordSnapshotSync records a sync operation (login merge, replace, save).
func RecordSnapshotSync(kind string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	snapshotSyncTotal.WithLabelValues(kind, status).Inc()
}

// RecordLLMProxyCall records an LLM proxy call outcome and duration.
func RecordLLMProxyCall(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	llmProxyCallsTotal.WithLabelValues(status).Inc()
	llmProxyDuration.Observe(duration.Seconds())
}
