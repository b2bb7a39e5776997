// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit so a saved record survives a crash.
	SyncWrites bool

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64
}

// BadgerStore persists records in an embedded BadgerDB.
type BadgerStore struct {
	db      *badger.DB
	gcRatio float64

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a BadgerDB at opts.Path.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	ratio := opts.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &BadgerStore{db: db, gcRatio: ratio}, nil
}

// Load implements Store.
func (s *BadgerStore) Load(_ context.Context, key string) (*Record, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save implements Store. The version check and write share one transaction;
// a concurrent writer makes the commit fail with badger.ErrConflict, which is
// reported as ErrVersionConflict.
func (s *BadgerStore) Save(_ context.Context, key string, rec *Record) error {
	if err := checkSave(rec); err != nil {
		return err
	}
	if s.isClosed() {
		return ErrClosed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		var stored uint64
		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get %s: %w", key, err)
		default:
			var head struct {
				Version uint64 `json:"version"`
			}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &head)
			}); err != nil {
				return fmt.Errorf("read stored version: %w", err)
			}
			stored = head.Version
		}

		if stored != rec.Version-1 {
			return fmt.Errorf("%w: stored %d, writing %d", ErrVersionConflict, stored, rec.Version)
		}
		return txn.Set([]byte(key), data)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrVersionConflict, err)
	}
	return err
}

// Ping implements Store.
func (s *BadgerStore) Ping(context.Context) error {
	if s.isClosed() || s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Name implements Store.
func (s *BadgerStore) Name() string { return "badger" }

// RunGC rewrites value log files until Badger reports nothing left to
// reclaim. In-memory databases have no value log and return nil.
func (s *BadgerStore) RunGC() error {
	if s.isClosed() {
		return ErrClosed
	}
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

var _ Store = (*BadgerStore)(nil)
