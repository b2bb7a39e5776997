// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
	"github.com/tomtom215/ritualboard/internal/room"
	"github.com/tomtom215/ritualboard/internal/storage"
	"github.com/tomtom215/ritualboard/internal/validation"
)

// Fixed CORS headers of the room endpoint.
const (
	roomAllowOrigin  = "*"
	roomAllowMethods = "GET, POST, OPTIONS"
	roomAllowHeaders = "Content-Type"
)

// Room serves /parties/main/{room}: a WebSocket upgrade joins the room, a
// plain GET returns the stored aggregate, OPTIONS answers the preflight and
// anything else is 405.
func (h *Handler) Room(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room")
	if !validation.ValidRoomID(roomID) {
		respondError(w, r, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found", nil)
		return
	}

	switch {
	case r.Method == http.MethodOptions:
		h.roomPreflight(w)
	case r.Method == http.MethodGet && websocket.IsWebSocketUpgrade(r):
		h.roomConnect(w, r, roomID)
	case r.Method == http.MethodGet:
		h.roomPoll(w, r, roomID)
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	}
}

func (h *Handler) roomPreflight(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", roomAllowOrigin)
	header.Set("Access-Control-Allow-Methods", roomAllowMethods)
	header.Set("Access-Control-Allow-Headers", roomAllowHeaders)
	w.WriteHeader(http.StatusNoContent)
}

// roomPoll returns the persisted aggregate of the room. Rooms without a
// stored aggregate, including every game room, return {}.
func (h *Handler) roomPoll(w http.ResponseWriter, r *http.Request, roomID string) {
	ctx := r.Context()
	if timeout := h.config.Storage.OperationTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	state := models.GlobalAggregate{}
	rec, err := h.store.Load(ctx, storage.RoomKey(roomID))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		respondError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Leaderboard temporarily unavailable", err)
		return
	case rec.State != nil:
		state = rec.State
	}

	w.Header().Set("Access-Control-Allow-Origin", roomAllowOrigin)
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) roomConnect(w http.ResponseWriter, r *http.Request, roomID string) {
	if _, err := h.registry.Get(roomID); err != nil {
		h.roomUnavailable(w, r, roomID, err)
		return
	}

	loc := h.resolver.Resolve(r.Context(), r)
	logger := logging.CtxWith(r.Context()).Str("room", roomID).Logger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		metrics.WSErrors.WithLabelValues("upgrade_failed").Inc()
		logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	if err := h.registry.Connect(roomID, conn, loc); err != nil {
		metrics.WSErrors.WithLabelValues("join_failed").Inc()
		logger.Warn().Err(err).Msg("Failed to join room after upgrade")
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "room unavailable"), deadline)
		_ = conn.Close()
		return
	}

	logger.Debug().
		Str("client", logging.Fingerprint(r.RemoteAddr)).
		Str("country", loc.Country).
		Str("region", loc.Region).
		Msg("WebSocket client joined")
}

func (h *Handler) roomUnavailable(w http.ResponseWriter, r *http.Request, roomID string, err error) {
	switch {
	case errors.Is(err, room.ErrInvalidRoomID):
		respondError(w, r, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found", nil)
	case errors.Is(err, room.ErrTooManyRooms):
		logging.Ctx(r.Context()).Warn().Str("room", roomID).Msg("Game room limit reached")
		respondError(w, r, http.StatusServiceUnavailable, "ROOM_LIMIT", "Too many active rooms", nil)
	default:
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Rooms unavailable", err)
	}
}
