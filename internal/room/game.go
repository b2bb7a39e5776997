// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package room

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
	"github.com/tomtom215/ritualboard/internal/websocket"
)

// leaderboardPrefix marks message types that only the leaderboard room
// understands.
const leaderboardPrefix = "LB_"

// gameHandler is the websocket.RoomHandler of a game room.
type gameHandler struct {
	hub *websocket.Hub
}

func (g *gameHandler) OnConnect(_ context.Context, _ websocket.Session) {
	g.announce()
}

func (g *gameHandler) OnDisconnect(_ context.Context, _ websocket.Session) {
	g.announce()
}

// OnMessage relays any JSON object to the other members of the room.
// Leaderboard messages and anything that is not an object are dropped.
func (g *gameHandler) OnMessage(_ context.Context, s websocket.Session, data []byte) {
	var env models.Envelope
	if !isObject(data) {
		metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
		return
	}
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.WSMessagesDropped.WithLabelValues("malformed").Inc()
		logging.Trace().Err(err).Str("room", g.hub.ID()).Uint64("client_id", s.ID()).Msg("Dropped game message")
		return
	}
	if strings.HasPrefix(env.Type, leaderboardPrefix) {
		metrics.WSMessagesDropped.WithLabelValues("wrong_room").Inc()
		return
	}
	g.hub.Fanout(data, s)
}

func (g *gameHandler) announce() {
	data, err := json.Marshal(models.PresenceMessage{
		Type:  models.MessageTypePresence,
		Room:  g.hub.ID(),
		Count: g.hub.ClientCount(),
	})
	if err != nil {
		logging.Error().Err(err).Str("room", g.hub.ID()).Msg("Failed to encode presence")
		return
	}
	g.hub.Fanout(data, nil)
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) >= 2 && data[0] == '{' && data[len(data)-1] == '}'
}
