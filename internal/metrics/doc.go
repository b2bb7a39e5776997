// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package metrics provides Prometheus metrics for the leaderboard service.

All collectors are registered with the default registry through promauto and
are exported at /metrics when METRICS_ENABLED is true.

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

WebSocket and rooms:
  - websocket_connections{room_kind}
  - websocket_messages_sent_total{room_kind}
  - websocket_messages_received_total{room_kind}
  - websocket_messages_dropped_total{reason}
  - websocket_errors_total{error_type}
  - rooms_active{room_kind}
  - rooms_evicted_total

Leaderboard:
  - leaderboard_increments_total{result}
  - leaderboard_clicks_total
  - leaderboard_countries
  - leaderboard_broadcasts_total
  - leaderboard_updates_coalesced_total
  - leaderboard_resets_total

Storage:
  - storage_operation_duration_seconds{backend,operation}
  - storage_errors_total{backend,operation,error_type}
  - storage_gc_runs_total{result}

Geolocation:
  - geolocation_lookups_total{source}
  - geolocation_cache_hits_total, geolocation_cache_misses_total
  - geolocation_api_call_duration_seconds
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Events:
  - events_published_total{result}

# Example Queries

Clicks per second by outcome:

	sum by (result) (rate(leaderboard_increments_total[5m]))

Share of mutations folded into a pending broadcast:

	rate(leaderboard_updates_coalesced_total[5m])
	  / (rate(leaderboard_updates_coalesced_total[5m]) + rate(leaderboard_broadcasts_total[5m]))

Persistence failure rate:

	rate(leaderboard_increments_total{result="persist_failed"}[5m])
*/
package metrics
