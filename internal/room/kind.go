// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package room

// Kind is the behaviour of a room, fixed when the room is created.
type Kind int

const (
	// KindGame is a presence and relay room.
	KindGame Kind = iota

	// KindLeaderboard is the global leaderboard room.
	KindLeaderboard
)

// String returns the metrics label of the kind.
func (k Kind) String() string {
	switch k {
	case KindLeaderboard:
		return "leaderboard"
	case KindGame:
		return "game"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of room id given the leaderboard room id.
func KindOf(id, leaderboardID string) Kind {
	if id == leaderboardID {
		return KindLeaderboard
	}
	return KindGame
}
