// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package middleware provides HTTP middleware shared by every route.

Key Components:

  - RequestID: per-request id in the X-Request-ID header, the request
    context and the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern

Both are written as func(http.HandlerFunc) http.HandlerFunc; the api
package adapts them to chi's r.Use.

The metrics wrapper forwards Hijack and Flush, so it can sit in front of
the WebSocket upgrade route.

Usage Example:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	func handler(w http.ResponseWriter, r *http.Request) {
	    id := middleware.GetRequestID(r.Context())
	    logging.Ctx(r.Context()).Info().Str("id", id).Msg("handling")
	}

See Also:

  - internal/api: router and handlers
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
