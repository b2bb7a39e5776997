// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package models

import (
	"time"
)

// APIResponse is the envelope of every JSON endpoint except the room polling
// endpoint, which returns the bare aggregate.
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"2026-10-18T12:00:00Z"}}
//	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_FOUND","message":"room not found"}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status      string         `json:"status"`
	Version     string         `json:"version,omitempty"`
	Uptime      float64        `json:"uptime_seconds"`
	Rooms       int            `json:"rooms"`
	Connections int            `json:"connections"`
	Leaderboard bool           `json:"leaderboard_loaded"`
	Details     map[string]any `json:"details,omitempty"`
}

// ResetResult is returned by the administrative reset endpoint.
type ResetResult struct {
	Room      string `json:"room"`
	LastReset int64  `json:"last_reset"`
	Cleared   int    `json:"countries_cleared"`
}

// LeaderboardTop is returned by the ranking endpoint.
type LeaderboardTop struct {
	Room       string        `json:"room"`
	TotalScore int64         `json:"total_score"`
	Countries  []CountryRank `json:"countries"`
}

// TopRequest holds the query parameters of the ranking endpoint.
type TopRequest struct {
	Limit int `json:"limit" validate:"gte=1,lte=250"`
}
