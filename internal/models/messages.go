// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package models

// Message types exchanged over the room WebSocket.
const (
	// MessageTypeClick is sent by clients to report taps.
	MessageTypeClick = "LB_CLICK"

	// MessageTypeUpdate carries the full aggregate to clients.
	MessageTypeUpdate = "LB_UPDATE"

	// MessageTypePresence carries the member count of a game room.
	MessageTypePresence = "PRESENCE"
)

// Envelope is the part of every inbound message needed to route it.
type Envelope struct {
	Type string `json:"type"`
}

// ClickMessage reports one or more taps from a client.
//
//	{"type":"LB_CLICK","count":5}
type ClickMessage struct {
	Type  string `json:"type" validate:"required,eq=LB_CLICK"`
	Count int64  `json:"count" validate:"gt=0"`
}

// UpdateMessage carries a snapshot of the leaderboard.
//
//	{"type":"LB_UPDATE","state":{"US":{"name":"United States","score":8,"regions":{"CA":5,"TX":3}}}}
type UpdateMessage struct {
	Type     string               `json:"type"`
	State    GlobalAggregate      `json:"state"`
	Metadata *LeaderboardMetadata `json:"metadata,omitempty"`
}

// NewUpdateMessage builds an LB_UPDATE message. The caller must pass copies
// it no longer mutates.
func NewUpdateMessage(state GlobalAggregate, meta *LeaderboardMetadata) *UpdateMessage {
	if state == nil {
		state = GlobalAggregate{}
	}
	return &UpdateMessage{Type: MessageTypeUpdate, State: state, Metadata: meta}
}

// PresenceMessage is broadcast to game rooms when membership changes.
type PresenceMessage struct {
	Type  string `json:"type"`
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// ClickEvent is published to the event bus for every applied increment.
type ClickEvent struct {
	ID      string `json:"id"`
	Room    string `json:"room"`
	Country string `json:"country"`
	Region  string `json:"region"`
	Count   int64  `json:"count"`
	Score   int64  `json:"score"`
	At      int64  `json:"at"`
}
