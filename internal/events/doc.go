// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package events publishes applied leaderboard increments to an event bus.

The aggregator hands every applied click to a Publisher, which queues it in a
bounded buffer and returns immediately. The Publisher runs as a supervised
service that drains the buffer into a Transport behind a circuit breaker. When
the buffer is full the event is dropped and counted; the leaderboard itself is
never slowed down by the bus.

Transports:

  - NATS: Watermill publisher over core NATS, optionally against an embedded
    nats-server (binary built with -tags nats)
  - Nop: used when EVENTS_ENABLED=false

Each event is a JSON encoded models.ClickEvent whose ID is also the Watermill
message UUID, so subscribers can deduplicate redeliveries.
*/
package events
