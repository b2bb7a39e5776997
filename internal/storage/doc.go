// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package storage persists room state.

Each room owns a single key holding a Record: the GlobalAggregate, its
metadata and a revision number. A Save succeeds only when the stored
revision is the one immediately before the record being written; otherwise
it fails with ErrVersionConflict. With one writer per room the check never
fires; it keeps a second process sharing the same table from silently
overwriting the first.

Backends:

  - MemoryStore: process-local, used in tests and with storage.backend=memory
  - BadgerStore: embedded BadgerDB, the default
  - DynamoStore: Amazon DynamoDB through guregu/dynamo with a conditional put

Open selects a backend from configuration.
*/
package storage
