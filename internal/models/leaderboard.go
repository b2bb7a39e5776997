// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package models

// UnknownRegion is the region key that absorbs clicks from sessions whose
// geolocation carried no region.
const UnknownRegion = "Unknown"

// MetadataSchemaVersion is written into LeaderboardMetadata.Version.
const MetadataSchemaVersion = 1

// CountryAggregate holds the score of one country.
//
// Score and every Regions value only ever grow. Name is resolved once from
// the country table when the entry is created and never rewritten.
//
// Example:
//
//	{"name":"United States","score":8,"regions":{"CA":5,"TX":3},"lastUpdated":1760790000000,"totalClicks":8}
type CountryAggregate struct {
	Name        string           `json:"name"`
	Score       int64            `json:"score"`
	Regions     map[string]int64 `json:"regions"`
	LastUpdated int64            `json:"lastUpdated,omitempty"`
	TotalClicks int64            `json:"totalClicks,omitempty"`
}

// Clone returns a deep copy of c.
func (c *CountryAggregate) Clone() *CountryAggregate {
	if c == nil {
		return nil
	}
	out := *c
	out.Regions = make(map[string]int64, len(c.Regions))
	for k, v := range c.Regions {
		out.Regions[k] = v
	}
	return &out
}

// GlobalAggregate maps an ISO-3166 alpha-2 country code to its aggregate.
// It is the entire persisted state of the leaderboard room.
type GlobalAggregate map[string]*CountryAggregate

// Clone returns a deep copy of g. A nil aggregate clones to an empty one so
// that it encodes as {} rather than null.
func (g GlobalAggregate) Clone() GlobalAggregate {
	out := make(GlobalAggregate, len(g))
	for code, country := range g {
		out[code] = country.Clone()
	}
	return out
}

// TotalScore returns the sum of all country scores.
func (g GlobalAggregate) TotalScore() int64 {
	var total int64
	for _, country := range g {
		total += country.Score
	}
	return total
}

// LeaderboardMetadata is the companion record stored next to the aggregate.
// Timestamps are Unix milliseconds; LastReset is zero until the first reset.
type LeaderboardMetadata struct {
	TotalGlobalClicks int64 `json:"totalGlobalClicks"`
	CreatedAt         int64 `json:"createdAt"`
	LastReset         int64 `json:"lastReset,omitempty"`
	Version           int   `json:"version"`
}

// Clone returns a copy of m.
func (m *LeaderboardMetadata) Clone() *LeaderboardMetadata {
	if m == nil {
		return nil
	}
	out := *m
	return &out
}
