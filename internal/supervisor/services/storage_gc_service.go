// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package services

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/storage"
)

// GarbageCollector is satisfied by *storage.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// StorageGCService reclaims Badger value log space on a fixed interval.
//
// Every leaderboard mutation rewrites the whole aggregate record, so the
// value log grows with traffic even though the live data stays small.
type StorageGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewStorageGCService creates the service. A non-positive interval means 10m.
func NewStorageGCService(gc GarbageCollector, interval time.Duration) *StorageGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StorageGCService{
		gc:       gc,
		interval: interval,
		name:     "storage-gc",
	}
}

// Serve implements suture.Service. It stops for good once the store has been
// closed.
func (s *StorageGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.runOnce(); errors.Is(err, storage.ErrClosed) {
				return suture.ErrDoNotRestart
			}
		}
	}
}

func (s *StorageGCService) runOnce() error {
	start := time.Now()
	err := s.gc.RunGC()
	if err != nil {
		metrics.StorageGCRuns.WithLabelValues("error").Inc()
		if !errors.Is(err, storage.ErrClosed) {
			logging.Warn().Err(err).Msg("Storage value log GC failed")
		}
		return err
	}
	metrics.StorageGCRuns.WithLabelValues("success").Inc()
	logging.Debug().Dur("duration", time.Since(start)).Msg("Storage value log GC completed")
	return nil
}

// String implements fmt.Stringer for suture logging.
func (s *StorageGCService) String() string {
	return s.name
}
