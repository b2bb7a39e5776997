// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"fmt"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/logging"
)

// Backend names accepted in storage.backend.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Open creates the store selected by cfg.Backend, instrumented for metrics.
// Use Unwrap to reach backend specific methods such as BadgerStore.RunGC.
func Open(cfg *config.StorageConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case BackendMemory:
		logging.Warn().Msg("Using in-memory storage; the leaderboard will not survive a restart")
		store = NewMemoryStore()
	case BackendBadger, "":
		store, err = OpenBadger(BadgerOptions{
			Path:       cfg.Path,
			SyncWrites: cfg.SyncWrites,
			GCRatio:    cfg.GCRatio,
		})
	case BackendDynamoDB:
		store, err = OpenDynamo(DynamoOptions{
			Table:    cfg.DynamoDB.Table,
			Region:   cfg.DynamoDB.Region,
			Endpoint: cfg.DynamoDB.Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("backend", store.Name()).Msg("Storage opened")
	return Instrument(store), nil
}
