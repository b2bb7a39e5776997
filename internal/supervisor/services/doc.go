// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package services provides suture.Service wrappers for components that do not
implement the Serve pattern themselves.

HTTP Server (HTTPServerService):
  - Wraps *http.Server, converting ListenAndServe into Serve
  - Shuts down with a bounded timeout when the tree stops

Storage GC (StorageGCService):
  - Runs Badger value log GC on STORAGE_GC_INTERVAL
  - Returns suture.ErrDoNotRestart once the store is closed

The room registry and the event publisher implement suture.Service directly
and are added to the tree without a wrapper.
*/
package services
