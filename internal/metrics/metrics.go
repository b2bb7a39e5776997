// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"room_kind"}, // "leaderboard", "game"
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"room_kind"},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
		[]string{"room_kind"},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of inbound WebSocket messages ignored",
		},
		[]string{"reason"}, // "malformed", "invalid", "rate_limited", "unknown_type"
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Room Metrics
	RoomsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Current number of live rooms",
		},
		[]string{"room_kind"},
	)

	RoomsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_evicted_total",
			Help: "Total number of idle game rooms closed by the janitor",
		},
	)

	// Leaderboard Metrics
	LeaderboardIncrements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_increments_total",
			Help: "Total number of click increments by outcome",
		},
		[]string{"result"}, // "applied", "rejected", "persist_failed"
	)

	LeaderboardClicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_clicks_total",
			Help: "Total number of clicks applied to the leaderboard",
		},
	)

	LeaderboardCountries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_countries",
			Help: "Number of countries on the leaderboard",
		},
	)

	LeaderboardBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_broadcasts_total",
			Help: "Total number of coalesced leaderboard broadcasts",
		},
	)

	LeaderboardCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_updates_coalesced_total",
			Help: "Total number of mutations folded into an already pending broadcast",
		},
	)

	LeaderboardResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_resets_total",
			Help: "Total number of administrative leaderboard resets",
		},
	)

	// Storage Metrics
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Total number of failed storage operations",
		},
		[]string{"backend", "operation", "error_type"}, // error_type: "conflict", "not_found", "other"
	)

	StorageGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_gc_runs_total",
			Help: "Total number of value log GC passes",
		},
		[]string{"result"}, // "success", "error"
	)

	// Geolocation Metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geolocation_lookups_total",
			Help: "Total number of connection geolocation resolutions by source",
		},
		[]string{"source"}, // "header", "ip_api", "fallback"
	)

	GeoCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geolocation_cache_hits_total",
			Help: "Total number of IP lookup cache hits",
		},
	)

	GeoCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geolocation_cache_misses_total",
			Help: "Total number of IP lookup cache misses",
		},
	)

	GeoAPICallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geolocation_api_call_duration_seconds",
			Help:    "Duration of ip-api.com lookups",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Publishing Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of click events handed to the event publisher",
		},
		[]string{"result"}, // "success", "failure"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStorageOperation records the latency of a store call and, on failure,
// its error class.
func RecordStorageOperation(backend, operation string, duration time.Duration, errType string) {
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if errType != "" {
		StorageErrors.WithLabelValues(backend, operation, errType).Inc()
	}
}

// RecordIncrement records the outcome of one LB_CLICK.
func RecordIncrement(result string, count int64) {
	LeaderboardIncrements.WithLabelValues(result).Inc()
	if result == "applied" {
		LeaderboardClicks.Add(float64(count))
	}
}

// RecordEventPublish records the outcome of a click event publish.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("failure").Inc()
		return
	}
	EventsPublished.WithLabelValues("success").Inc()
}

// CircuitBreakerStateValue maps a breaker state name to the gauge value.
func CircuitBreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
