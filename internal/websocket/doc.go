// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package websocket implements the per-room connection hub.

Every room has one Hub. The hub goroutine owns room membership and calls the
room's RoomHandler for each connect, message and disconnect, one call at a
time. Room semantics (leaderboard increments, game presence) live in the
handler; the hub only moves bytes.

Architecture:

	        ┌──────────────┐
	        │ Hub (1/room) │──► RoomHandler
	        └──────┬───────┘
	   register / unregister / inbound / broadcast
	  ┌────────────┼────────────┐
	Client1     Client2      Client3

Each client has two goroutines:
  - readPump: reads text frames, applies the per-connection rate limit and
    forwards them to the hub
  - writePump: writes queued frames and keeps the connection alive with pings

Delivery:

Broadcast may be called from any goroutine and never blocks. Fan-out is
non-blocking per client: a client whose send buffer is full is cut off and
unregistered without delaying delivery to the others.

Usage:

	hub := websocket.NewHub("global-leaderboard", websocket.Options{Kind: "leaderboard"})
	go hub.Run(ctx, handler)

	conn, _ := upgrader.Upgrade(w, r, nil)
	if err := websocket.NewClient(hub, conn, loc).Start(); err != nil {
	    conn.Close()
	}
*/
package websocket
