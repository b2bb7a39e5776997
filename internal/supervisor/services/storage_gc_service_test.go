// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/storage"
)

type fakeGC struct {
	runs atomic.Int32
	err  error
}

func (f *fakeGC) RunGC() error {
	f.runs.Add(1)
	return f.err
}

func TestNewStorageGCService_DefaultInterval(t *testing.T) {
	svc := NewStorageGCService(&fakeGC{}, 0)
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
	if svc.String() != "storage-gc" {
		t.Errorf("String() = %q, want %q", svc.String(), "storage-gc")
	}
}

func TestStorageGCService_RunsPeriodically(t *testing.T) {
	gc := &fakeGC{}
	before := testutil.ToFloat64(metrics.StorageGCRuns.WithLabelValues("success"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(NewStorageGCService(gc, 5*time.Millisecond), ctx)

	deadline := time.Now().Add(2 * time.Second)
	for gc.runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	runs := gc.runs.Load()
	if runs < 3 {
		t.Fatalf("RunGC calls = %d, want at least 3", runs)
	}
	if got := testutil.ToFloat64(metrics.StorageGCRuns.WithLabelValues("success")) - before; got != float64(runs) {
		t.Errorf("success delta = %v, want %d", got, runs)
	}
}

func TestStorageGCService_KeepsRunningAfterFailure(t *testing.T) {
	gc := &fakeGC{err: errors.New("value log corrupted")}
	before := testutil.ToFloat64(metrics.StorageGCRuns.WithLabelValues("error"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(NewStorageGCService(gc, 5*time.Millisecond), ctx)

	deadline := time.Now().Add(2 * time.Second)
	for gc.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := testutil.ToFloat64(metrics.StorageGCRuns.WithLabelValues("error")) - before; got < 2 {
		t.Errorf("error delta = %v, want at least 2", got)
	}
}

func TestStorageGCService_StopsWhenStoreClosed(t *testing.T) {
	gc := &fakeGC{err: storage.ErrClosed}

	select {
	case err := <-serveAsync(NewStorageGCService(gc, 5*time.Millisecond), context.Background()):
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want suture.ErrDoNotRestart", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop after the store was closed")
	}
	if got := gc.runs.Load(); got != 1 {
		t.Errorf("RunGC calls = %d, want 1", got)
	}
}

func TestStorageGCService_BadgerInMemory(t *testing.T) {
	store, err := storage.OpenBadger(storage.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	defer store.Close()

	svc := NewStorageGCService(store, time.Minute)
	if err := svc.runOnce(); err != nil {
		t.Errorf("runOnce() on in-memory badger = %v, want nil", err)
	}
}
