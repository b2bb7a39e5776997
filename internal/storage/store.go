// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"errors"

	"github.com/tomtom215/ritualboard/internal/models"
)

var (
	// ErrNotFound is returned by Load when the room has never been saved.
	ErrNotFound = errors.New("storage: record not found")

	// ErrVersionConflict is returned by Save when the stored revision is not
	// the one the record was derived from.
	ErrVersionConflict = errors.New("storage: version conflict")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("storage: store closed")
)

// Record is the persisted state of one room.
type Record struct {
	State    models.GlobalAggregate      `json:"state"`
	Metadata *models.LeaderboardMetadata `json:"metadata,omitempty"`
	// Version is the storage revision. The first saved record has Version 1.
	Version uint64 `json:"version"`
}

// Store loads and saves room records.
type Store interface {
	// Load returns the record for key or ErrNotFound.
	Load(ctx context.Context, key string) (*Record, error)

	// Save writes rec if the stored revision equals rec.Version-1 (absent
	// counts as 0). It returns ErrVersionConflict otherwise.
	Save(ctx context.Context, key string, rec *Record) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// RoomKey returns the storage key of a room's aggregate.
func RoomKey(roomID string) string {
	return "room:" + roomID + ":aggregate"
}

func checkSave(rec *Record) error {
	if rec == nil {
		return errors.New("storage: nil record")
	}
	if rec.Version == 0 {
		return errors.New("storage: record version must be at least 1")
	}
	return nil
}
