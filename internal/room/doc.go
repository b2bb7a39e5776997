// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package room maps room ids to running websocket hubs.

Every room id resolves to exactly one Kind when the room is created:

  - KindLeaderboard: the configured leaderboard id. Its hub is driven by a
    leaderboard.Handler wrapping the room's Aggregator.
  - KindGame: any other valid id. Members receive PRESENCE counts and relay
    JSON objects to each other.

Rooms share nothing. Each has its own hub goroutine, its own handler and,
for the leaderboard, its own aggregator and broadcast scheduler.

The Registry creates rooms lazily, evicts empty game rooms after an idle
timeout and caps the number of live game rooms. It implements
suture.Service; Serve runs the janitor and closes every room on shutdown.

Example:

	reg, err := room.NewRegistry(room.Options{...})
	if err != nil {
	    return err
	}
	tree.AddMessagingService(reg)

	// In the upgrade handler:
	if err := reg.Connect(roomID, conn, loc); err != nil {
	    conn.Close()
	}
*/
package room
