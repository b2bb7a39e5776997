// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package leaderboard

import (
	"sync"
	"time"

	"github.com/tomtom215/ritualboard/internal/metrics"
)

// SchedulerState is the state of a broadcast scheduler.
type SchedulerState int

const (
	// StateIdle means no broadcast is scheduled.
	StateIdle SchedulerState = iota
	// StatePending means a payload is captured and the timer is armed.
	StatePending
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

type schedulerEvent int

const (
	eventMutation schedulerEvent = iota
	eventTimerFired
	eventStop
)

// effect is what the caller of step must do after the transition.
type effect int

const (
	effectNone effect = iota
	effectArm
	effectBroadcast
	effectDisarm
)

// Scheduler coalesces mutations into at most one broadcast per delay.
// The timer is armed by the first mutation and is never reset by later
// ones; the broadcast carries the payload of the latest mutation.
type Scheduler[T any] struct {
	mu      sync.Mutex
	state   SchedulerState
	pending T
	timer   Timer
	stopped bool

	delay     time.Duration
	clock     Clock
	broadcast func(T)
}

// NewScheduler creates an idle scheduler that calls broadcast with the
// captured payload delay after the first mutation of a window.
func NewScheduler[T any](delay time.Duration, clock Clock, broadcast func(T)) *Scheduler[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Scheduler[T]{
		state:     StateIdle,
		delay:     delay,
		clock:     clock,
		broadcast: broadcast,
	}
}

// step is the transition function. It must be called with s.mu held.
func (s *Scheduler[T]) step(ev schedulerEvent, payload T) effect {
	switch s.state {
	case StateIdle:
		if ev == eventMutation {
			s.state = StatePending
			s.pending = payload
			return effectArm
		}
	case StatePending:
		switch ev {
		case eventMutation:
			s.pending = payload
			return effectNone
		case eventTimerFired:
			s.state = StateIdle
			return effectBroadcast
		case eventStop:
			var zero T
			s.state = StateIdle
			s.pending = zero
			return effectDisarm
		}
	}
	return effectNone
}

// Notify records a mutation whose broadcast payload is payload.
func (s *Scheduler[T]) Notify(payload T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	switch s.step(eventMutation, payload) {
	case effectArm:
		s.timer = s.clock.AfterFunc(s.delay, s.fire)
	case effectNone:
		metrics.LeaderboardCoalesced.Inc()
	}
}

func (s *Scheduler[T]) fire() {
	var zero T

	s.mu.Lock()
	if s.stopped || s.step(eventTimerFired, zero) != effectBroadcast {
		s.mu.Unlock()
		return
	}
	payload := s.pending
	s.pending = zero
	s.timer = nil
	s.mu.Unlock()

	metrics.LeaderboardBroadcasts.Inc()
	s.broadcast(payload)
}

// State returns the current state.
func (s *Scheduler[T]) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop disarms a pending broadcast and ignores all later mutations.
func (s *Scheduler[T]) Stop() {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.step(eventStop, zero) == effectDisarm && s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
