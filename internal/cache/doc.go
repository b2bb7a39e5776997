// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

// Package cache provides a generic, size-bounded LRU cache with per-entry TTL.
//
// It backs the ip-api.com geolocation lookups, keyed by client IP
// fingerprint, so repeat connections from one address cost a single lookup
// per TTL.
//
//	c := cache.NewLRU[models.Location](10000, time.Hour)
//	c.Set(key, loc)
//	if loc, ok := c.Get(key); ok {
//	    ...
//	}
package cache
