// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/geo"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/room"
	"github.com/tomtom215/ritualboard/internal/storage"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	config    *config.Config
	registry  *room.Registry
	store     storage.Store
	resolver  *geo.Resolver
	upgrader  websocket.Upgrader
	startTime time.Time
	version   string
}

// NewHandler creates the HTTP handlers.
func NewHandler(cfg *config.Config, registry *room.Registry, store storage.Store, resolver *geo.Resolver, version string) *Handler {
	h := &Handler{
		config:    cfg,
		registry:  registry,
		store:     store,
		resolver:  resolver,
		startTime: time.Now(),
		version:   version,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// checkWebSocketOrigin validates WebSocket connection origins. A "*" entry
// admits every client, including non-browser clients without an Origin.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || (origin != "" && allowed == origin) {
			return true
		}
	}

	logging.Ctx(r.Context()).Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
