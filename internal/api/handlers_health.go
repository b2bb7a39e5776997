// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/ritualboard/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health returns the full health report. It is 200 when the service is
// ready and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.healthStatus(r.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, status)
}

// HealthLive handles liveness probe requests (Kubernetes-style). It always
// succeeds while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only once the leaderboard aggregate has been loaded and
// storage answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	loaded := h.registry.Leaderboard().Aggregator().Loaded()
	storageOK := h.pingStorage(r.Context()) == nil
	ready := loaded && storageOK

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, r, statusCode, map[string]interface{}{
		"leaderboard_loaded": loaded,
		"storage_connected":  storageOK,
		"ready_to_serve":     ready,
		"uptime":             time.Since(h.startTime).Seconds(),
	})
}

func (h *Handler) healthStatus(ctx context.Context) models.HealthStatus {
	rooms, connections := h.registry.Stats()
	loaded := h.registry.Leaderboard().Aggregator().Loaded()

	details := map[string]any{
		"storage_backend": h.store.Name(),
	}
	storageErr := h.pingStorage(ctx)
	if storageErr != nil {
		details["storage_error"] = storageErr.Error()
	}

	status := "healthy"
	if !loaded || storageErr != nil {
		status = "degraded"
	}

	return models.HealthStatus{
		Status:      status,
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Seconds(),
		Rooms:       rooms,
		Connections: connections,
		Leaderboard: loaded,
		Details:     details,
	}
}

func (h *Handler) pingStorage(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}
