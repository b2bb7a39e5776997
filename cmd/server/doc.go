// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package main is the entry point of the ritualboard server.

Ritualboard hosts WebSocket rooms for a browser stress-relief game. The
"global-leaderboard" room accumulates clicks per country and region from every
connected player and pushes the aggregate to all of them at most once per
second. Every other room id is a game room that relays JSON messages between
its members.

# Startup

 1. .env (optional) and configuration via Koanf v2: defaults, YAML, environment
 2. zerolog logging
 3. Storage backend: badger (default), dynamodb or memory
 4. Supervisor tree (suture v4)
 5. Click event publisher (EVENTS_ENABLED, binary built with -tags nats)
 6. Room registry with the leaderboard room, warmed from storage
 7. Geolocation resolver: CDN headers, then ip-api.com, then FALLBACK_COUNTRY
 8. chi router and HTTP server

# Routes

	GET     /parties/main/{room}        WebSocket upgrade or aggregate poll
	OPTIONS /parties/main/{room}        CORS preflight
	GET     /api/v1/health              health, /live, /ready
	GET     /api/v1/leaderboard/top     ranked countries
	POST    /api/v1/admin/leaderboard/reset
	GET     /metrics                    Prometheus

# Build Tags

	go build ./cmd/server                # events disabled at compile time
	go build -tags nats ./cmd/server     # Watermill/NATS click events

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
SHUTDOWN_TIMEOUT, the rooms close their connections, queued click
events are flushed, and storage is closed last.

# Example

	export STORAGE_BACKEND=badger
	export STORAGE_PATH=/data/ritualboard
	export CORS_ORIGINS=https://ritual.example.com
	./ritualboard
*/
package main
