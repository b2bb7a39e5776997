// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package models

import "sort"

// CountryRank is one row of the ranking endpoint.
type CountryRank struct {
	Rank        int          `json:"rank"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Score       int64        `json:"score"`
	TotalClicks int64        `json:"total_clicks,omitempty"`
	Regions     []RegionRank `json:"regions"`
}

// RegionRank is a region score inside a CountryRank.
type RegionRank struct {
	Code  string `json:"code"`
	Score int64  `json:"score"`
}

// Rank orders the aggregate by score descending, then by code, and returns
// at most limit rows. limit <= 0 returns every country.
func (g GlobalAggregate) Rank(limit int) []CountryRank {
	rows := make([]CountryRank, 0, len(g))
	for code, country := range g {
		regions := make([]RegionRank, 0, len(country.Regions))
		for region, score := range country.Regions {
			regions = append(regions, RegionRank{Code: region, Score: score})
		}
		sort.Slice(regions, func(i, j int) bool {
			if regions[i].Score != regions[j].Score {
				return regions[i].Score > regions[j].Score
			}
			return regions[i].Code < regions[j].Code
		})
		rows = append(rows, CountryRank{
			Code:        code,
			Name:        country.Name,
			Score:       country.Score,
			TotalClicks: country.TotalClicks,
			Regions:     regions,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Code < rows[j].Code
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
