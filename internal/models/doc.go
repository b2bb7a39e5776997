// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package models defines the data structures shared across Ritualboard.

Leaderboard state:

  - GlobalAggregate: country code to CountryAggregate, the persisted room state
  - CountryAggregate: score, per-region scores, click counter and timestamp
  - LeaderboardMetadata: global click total, creation and reset times, schema version

Wire protocol:

  - ClickMessage (LB_CLICK): inbound tap report
  - UpdateMessage (LB_UPDATE): outbound snapshot and coalesced broadcast
  - PresenceMessage (PRESENCE): game room membership count

Session and events:

  - Location: per-connection geolocation resolved at connect time
  - ClickEvent: applied increment published to the event bus

HTTP API:

  - APIResponse, APIError, Metadata: JSON envelope
  - CountryRank, RegionRank: ranking endpoint rows

JSON field names of the aggregate and protocol messages are fixed by the
browser client and use camelCase; API envelopes use snake_case like the rest
of the HTTP surface.
*/
package models
