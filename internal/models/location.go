// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package models

import "strings"

// Location is the coarse geolocation attached to a connection when it is
// admitted. It is never persisted.
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
	// Source names where Country came from: a header name, "ip-api" or "fallback".
	Source string `json:"-"`
}

// SourceFallback marks a location whose country was filled in by WithFallback.
const SourceFallback = "fallback"

// WithFallback returns l with Country set to fallback when l has none.
// Country codes are normalized to upper case and region codes are trimmed.
func (l Location) WithFallback(fallback string) Location {
	l.Country = strings.ToUpper(strings.TrimSpace(l.Country))
	l.Region = strings.TrimSpace(l.Region)
	l.City = strings.TrimSpace(l.City)
	if l.Country == "" {
		l.Country = strings.ToUpper(fallback)
		l.Source = SourceFallback
	}
	return l
}

// RegionKey returns the region bucket for this location.
func (l Location) RegionKey() string {
	if strings.TrimSpace(l.Region) == "" {
		return UnknownRegion
	}
	return strings.TrimSpace(l.Region)
}
