// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package api provides the HTTP surface of the service using the Chi router.

Routes:

	GET     /parties/main/{room}            WebSocket upgrade, or polling read of the room aggregate
	OPTIONS /parties/main/{room}            CORS preflight, 204
	GET     /api/v1/leaderboard/top         ranked countries (?limit=1..250, default 10)
	POST    /api/v1/admin/leaderboard/reset clear the leaderboard (Bearer admin token)
	GET     /api/v1/health                  full health report
	GET     /api/v1/health/live             liveness probe
	GET     /api/v1/health/ready            readiness probe, 503 until the leaderboard is loaded
	GET     /metrics                        Prometheus metrics (server.metrics_enabled)

The room endpoint keeps the wire contract of the original party server: a
polling GET returns the bare aggregate ({} when nothing is stored) with
Access-Control-Allow-Origin: *, OPTIONS answers 204 with fixed CORS headers,
and every other method is 405. All /api/v1 endpoints answer with the
models.APIResponse envelope.

Middleware stack (outermost first): request id, real IP, panic recovery,
CORS, per-IP rate limiting (go-chi/httprate), Prometheus metrics.

Security:
  - The admin token is compared in constant time; the reset route answers
    404 when no token is configured.
  - WebSocket origins are checked against security.cors_origins.
  - Client IPs are never logged; logging.Fingerprint is logged instead.
*/
package api
