// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until cancelled, optionally failing its first runs.
type mockService struct {
	name       string
	failFirst  int32
	startCount atomic.Int32
	stopCount  atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.startCount.Add(1)
	defer m.stopCount.Add(1)

	if n <= m.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}

func (m *mockService) starts() int32 {
	return m.startCount.Load()
}

func (m *mockService) stops() int32 {
	return m.stopCount.Load()
}
