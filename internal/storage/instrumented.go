// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/ritualboard/internal/metrics"
)

// instrumentedStore records latency and error class of every call.
type instrumentedStore struct {
	Store
}

// Instrument wraps s so that Load, Save and Ping are reported to Prometheus.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumentedStore); ok {
		return s
	}
	return &instrumentedStore{Store: s}
}

// Unwrap returns the store underneath an instrumented store, or s itself.
func Unwrap(s Store) Store {
	if is, ok := s.(*instrumentedStore); ok {
		return is.Store
	}
	return s
}

func (s *instrumentedStore) Load(ctx context.Context, key string) (*Record, error) {
	start := time.Now()
	rec, err := s.Store.Load(ctx, key)
	metrics.RecordStorageOperation(s.Name(), "load", time.Since(start), errorClass(err))
	return rec, err
}

func (s *instrumentedStore) Save(ctx context.Context, key string, rec *Record) error {
	start := time.Now()
	err := s.Store.Save(ctx, key, rec)
	metrics.RecordStorageOperation(s.Name(), "save", time.Since(start), errorClass(err))
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.Store.Ping(ctx)
	metrics.RecordStorageOperation(s.Name(), "ping", time.Since(start), errorClass(err))
	return err
}

func errorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrVersionConflict):
		return "conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}
