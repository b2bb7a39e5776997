// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package leaderboard implements the global leaderboard room.

An Aggregator owns the country/region aggregate of one room. It is created
explicitly per room and injected into the room's Handler; there is no
package-level state.

# Increments

ApplyIncrement validates the count, derives the next aggregate without
touching the current one, persists it, and only then makes it current. A
persistence failure drops the increment and leaves memory unchanged.

# Broadcast coalescing

Successful mutations are handed to a Scheduler, a two-state machine:

	Idle ──mutation──► Pending(payload, timer armed)
	Pending ──mutation──► Pending(payload replaced, timer untouched)
	Pending ──timer──► Idle (payload broadcast)

The clock is injected so the machine can be driven in tests without
waiting.
*/
package leaderboard
