// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// MemoryStore keeps records in process memory. Records are stored encoded so
// callers never share maps with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	data, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, rec *Record) error {
	if err := checkSave(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	var stored uint64
	if prev, ok := s.records[key]; ok {
		var head struct {
			Version uint64 `json:"version"`
		}
		if err := json.Unmarshal(prev, &head); err != nil {
			return fmt.Errorf("unmarshal stored version: %w", err)
		}
		stored = head.Version
	}
	if stored != rec.Version-1 {
		return fmt.Errorf("%w: stored %d, writing %d", ErrVersionConflict, stored, rec.Version)
	}

	s.records[key] = data
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
