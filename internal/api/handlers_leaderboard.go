// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/models"
)

const defaultTopLimit = 10

// LeaderboardTop returns the countries of the leaderboard ordered by score.
//
// Query parameters:
//   - limit: 1..250, default 10
func (h *Handler) LeaderboardTop(w http.ResponseWriter, r *http.Request) {
	limit, ok := getIntParam(r, "limit", defaultTopLimit)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	req := models.TopRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	lb := h.registry.Leaderboard()
	snapshot, err := lb.Aggregator().Snapshot(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Leaderboard temporarily unavailable", err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.LeaderboardTop{
		Room:       lb.ID(),
		TotalScore: snapshot.State.TotalScore(),
		Countries:  snapshot.State.Rank(req.Limit),
	})
}

// LeaderboardReset clears the leaderboard. It requires the configured admin
// token as a Bearer credential and is hidden (404) when none is configured.
func (h *Handler) LeaderboardReset(w http.ResponseWriter, r *http.Request) {
	token := h.config.Security.AdminToken
	if token == "" {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	if !bearerMatches(r, token) {
		logging.Ctx(r.Context()).Warn().
			Str("client", logging.Fingerprint(r.RemoteAddr)).
			Msg("Rejected leaderboard reset with invalid credentials")
		w.Header().Set("WWW-Authenticate", `Bearer realm="ritualboard"`)
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing admin token", nil)
		return
	}

	res, err := h.registry.Leaderboard().Aggregator().Reset(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Reset failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("room", res.Room).
		Int("countries_cleared", res.Cleared).
		Msg("Leaderboard reset by administrator")
	respondJSON(w, r, http.StatusOK, res)
}

func bearerMatches(r *http.Request, token string) bool {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return false
	}
	given := strings.TrimSpace(auth[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}
