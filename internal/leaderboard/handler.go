// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package leaderboard

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/websocket"
)

// Handler is the websocket.RoomHandler of the leaderboard room.
type Handler struct {
	agg *Aggregator
}

// NewHandler creates a handler serving agg.
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

// Aggregator returns the aggregator the handler serves.
func (h *Handler) Aggregator() *Aggregator {
	return h.agg
}

// OnConnect sends the new client a full snapshot.
func (h *Handler) OnConnect(ctx context.Context, s websocket.Session) {
	snapshot, err := h.agg.Snapshot(ctx)
	if err != nil {
		logging.Error().Err(err).Str("room", h.agg.RoomID()).Msg("Failed to load snapshot for new connection")
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logging.Error().Err(err).Str("room", h.agg.RoomID()).Msg("Failed to encode snapshot")
		return
	}
	if s.Send(data) {
		metrics.WSMessagesSent.WithLabelValues("leaderboard").Inc()
	}
}

// OnMessage applies LB_CLICK frames. Anything else is dropped without a
// reply.
func (h *Handler) OnMessage(ctx context.Context, s websocket.Session, data []byte) {
	count, err := ParseClick(data)
	if err != nil {
		reason := dropReason(err)
		metrics.WSMessagesDropped.WithLabelValues(reason).Inc()
		if reason == "invalid" {
			metrics.RecordIncrement("rejected", 0)
		}
		logging.Trace().Err(err).Uint64("client_id", s.ID()).Msg("Dropped leaderboard message")
		return
	}

	// Failures are logged and counted by the aggregator; the client gets no
	// acknowledgement either way.
	_ = h.agg.ApplyIncrement(ctx, s.Location(), count)
}

// OnDisconnect is a no-op: the leaderboard holds no per-connection state.
func (h *Handler) OnDisconnect(context.Context, websocket.Session) {}
