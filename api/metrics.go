package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts API requests by entity, operation and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_client_requests_total",
			Help: "Total number of console API requests by entity, operation and status",
		},
		[]string{"entity", "operation", "status"},
	)

	// RequestDuration observes end-to-end request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_client_request_duration_seconds",
			Help:    "Console API request duration in seconds by entity and operation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"entity", "operation"},
	)

	// CacheLookupsTotal counts tag-cache lookups by entity and result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_client_cache_lookups_total",
			Help: "Total number of tag cache lookups by entity and result (hit/miss)",
		},
		[]string{"entity", "result"},
	)

	// CacheInvalidationsTotal counts entries marked stale, by tag type.
	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_client_cache_invalidations_total",
			Help: "Total number of cache entries invalidated by tag type",
		},
		[]string{"tag_type"},
	)
)

func recordRequest(entity, operation string, err error, seconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RequestsTotal.WithLabelValues(entity, operation, status).Inc()
	RequestDuration.WithLabelValues(entity, operation).Observe(seconds)
}

func recordCacheLookup(entity string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(entity, result).Inc()
}

func recordInvalidations(tagType string, affected int) {
	if affected > 0 {
		CacheInvalidationsTotal.WithLabelValues(tagType).Add(float64(affected))
	}
}
