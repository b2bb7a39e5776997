// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

// Package geo resolves the coarse location of a connecting client.
//
// Edge network headers (Cloudflare, Vercel, CloudFront) are consulted first.
// When none of them carries a country and IP lookups are enabled, the client
// address is looked up through ip-api.com behind a rate limiter, a circuit
// breaker and an LRU cache. Whatever remains unresolved falls back to the
// configured country, so resolution never fails.
package geo
