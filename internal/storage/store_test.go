// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func sampleRecord(version uint64, score int64) *Record {
	return &Record{
		State: models.GlobalAggregate{
			"US": {Name: "United States", Score: score, Regions: map[string]int64{"CA": score}, TotalClicks: score},
		},
		Metadata: &models.LeaderboardMetadata{TotalGlobalClicks: score, CreatedAt: 1700000000000, Version: models.MetadataSchemaVersion},
		Version:  version,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := RoomKey("global-leaderboard")

	if _, err := store.Load(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(empty) error = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, key, sampleRecord(2, 5)); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("Save(v2 over nothing) error = %v, want ErrVersionConflict", err)
	}

	if err := store.Save(ctx, key, sampleRecord(1, 5)); err != nil {
		t.Fatalf("Save(v1) error = %v", err)
	}
	if err := store.Save(ctx, key, sampleRecord(2, 8)); err != nil {
		t.Fatalf("Save(v2) error = %v", err)
	}
	if err := store.Save(ctx, key, sampleRecord(2, 9)); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("Save(stale v2) error = %v, want ErrVersionConflict", err)
	}

	rec, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.Version != 2 {
		t.Errorf("Version = %d, want 2", rec.Version)
	}
	us := rec.State["US"]
	if us == nil || us.Score != 8 || us.Regions["CA"] != 8 || us.Name != "United States" {
		t.Errorf("State[US] = %+v, want score 8 with CA=8", us)
	}
	if rec.Metadata == nil || rec.Metadata.TotalGlobalClicks != 8 {
		t.Errorf("Metadata = %+v, want totalGlobalClicks 8", rec.Metadata)
	}

	if _, err := store.Load(ctx, RoomKey("other-room")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(other room) error = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, key, nil); err == nil {
		t.Error("Save(nil) error = nil, want error")
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	exerciseStore(t, store)

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := store.Load(context.Background(), RoomKey("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Load() after Close error = %v, want ErrClosed", err)
	}
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Save(ctx, "k", sampleRecord(1, 3)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, _ := store.Load(ctx, "k")
	first.State["US"].Score = 1000

	second, _ := store.Load(ctx, "k")
	if second.State["US"].Score != 3 {
		t.Errorf("stored score = %d after mutating a loaded copy, want 3", second.State["US"].Score)
	}
}

func setupBadgerStore(t *testing.T) (*BadgerStore, string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "ritualboard-badger-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	store, err := OpenBadger(BadgerOptions{Path: dir, SyncWrites: true})
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("OpenBadger() error = %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(dir)
	}
	return store, dir, cleanup
}

func TestBadgerStore(t *testing.T) {
	store, _, cleanup := setupBadgerStore(t)
	defer cleanup()

	exerciseStore(t, store)

	if err := store.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	store, dir, cleanup := setupBadgerStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Save(ctx, RoomKey("global-leaderboard"), sampleRecord(1, 42)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}

	reopened, err := OpenBadger(BadgerOptions{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.Load(ctx, RoomKey("global-leaderboard"))
	if err != nil {
		t.Fatalf("Load() after reopen error = %v", err)
	}
	if rec.State["US"].Score != 42 || rec.Version != 1 {
		t.Errorf("Load() after reopen = score %d version %d, want 42/1", rec.State["US"].Score, rec.Version)
	}
}

func TestBadgerStore_InMemory(t *testing.T) {
	t.Parallel()

	store, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger(in-memory) error = %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)

	if err := store.RunGC(); err != nil {
		t.Errorf("RunGC() in memory error = %v, want nil", err)
	}
}

func TestRoomKey(t *testing.T) {
	t.Parallel()

	if got := RoomKey("global-leaderboard"); got != "room:global-leaderboard:aggregate" {
		t.Errorf("RoomKey() = %q", got)
	}
}

func TestInstrumentedStore(t *testing.T) {
	inner := NewMemoryStore()
	store := Instrument(inner)

	exerciseStore(t, store)

	if Instrument(store) != store {
		t.Error("Instrument() wrapped an already instrumented store")
	}
	if Unwrap(store) != Store(inner) {
		t.Error("Unwrap() did not return the inner store")
	}
	if Unwrap(inner) != Store(inner) {
		t.Error("Unwrap() of a plain store should return it unchanged")
	}
}

func TestOpen(t *testing.T) {
	store, err := Open(&config.StorageConfig{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	defer store.Close()
	if store.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", store.Name())
	}

	badgerStore, err := Open(&config.StorageConfig{Backend: BackendBadger, Path: t.TempDir(), GCRatio: 0.5})
	if err != nil {
		t.Fatalf("Open(badger) error = %v", err)
	}
	defer badgerStore.Close()
	if _, ok := Unwrap(badgerStore).(*BadgerStore); !ok {
		t.Errorf("Unwrap(Open(badger)) = %T, want *BadgerStore", Unwrap(badgerStore))
	}

	if _, err := Open(&config.StorageConfig{Backend: "etcd"}); err == nil {
		t.Error("Open(etcd) error = nil, want error")
	}
}
