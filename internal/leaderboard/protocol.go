// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package leaderboard

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ritualboard/internal/models"
	"github.com/tomtom215/ritualboard/internal/validation"
)

var (
	errMalformed = errors.New("leaderboard: malformed message")
	errNotClick  = errors.New("leaderboard: not a click message")
)

// ParseClick decodes an LB_CLICK frame and returns its count.
//
// The count must be a JSON integer literal: 5.0, "5", null and a missing
// count are all rejected with ErrInvalidCount.
func ParseClick(data []byte) (int64, error) {
	var raw struct {
		Type  string          `json:"type"`
		Count json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if raw.Type != models.MessageTypeClick {
		return 0, errNotClick
	}

	count, err := strconv.ParseInt(string(bytes.TrimSpace(raw.Count)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", ErrInvalidCount, raw.Count)
	}

	msg := models.ClickMessage{Type: raw.Type, Count: count}
	if verr := validation.ValidateStruct(&msg); verr != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCount, verr.Error())
	}
	return msg.Count, nil
}

// dropReason classifies a ParseClick error for metrics.
func dropReason(err error) string {
	switch {
	case errors.Is(err, errMalformed):
		return "malformed"
	case errors.Is(err, errNotClick):
		return "unknown_type"
	default:
		return "invalid"
	}
}
