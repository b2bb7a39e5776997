// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
)

const breakerName = "event-publisher"

// ErrBufferFull is recorded when an event is dropped because the publisher
// cannot keep up.
var ErrBufferFull = errors.New("event buffer full")

// Transport delivers a single event to the bus.
type Transport interface {
	Send(ctx context.Context, ev models.ClickEvent) error
	Close() error
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	BufferSize  int
	SendTimeout time.Duration
}

// DefaultPublisherConfig returns the production defaults.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		BufferSize:  1024,
		SendTimeout: 5 * time.Second,
	}
}

// Publisher queues click events and forwards them to a Transport.
type Publisher struct {
	transport Transport
	queue     chan models.ClickEvent
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[struct{}]
	log       zerolog.Logger

	closeOnce sync.Once
}

// NewPublisher creates a Publisher. Serve must be running for events to be
// delivered.
func NewPublisher(transport Transport, cfg PublisherConfig) *Publisher {
	if cfg.BufferSize < 1 {
		cfg.BufferSize = DefaultPublisherConfig().BufferSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultPublisherConfig().SendTimeout
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	log := logging.WithComponent("events")

	return &Publisher{
		log:       log,
		transport: transport,
		queue:     make(chan models.ClickEvent, cfg.BufferSize),
		timeout:   cfg.SendTimeout,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
				metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.CircuitBreakerStateValue(to.String()))
				metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			},
		}),
	}
}

// Publish queues ev without blocking. Events are dropped when the buffer is
// full.
func (p *Publisher) Publish(ev models.ClickEvent) {
	select {
	case p.queue <- ev:
	default:
		metrics.RecordEventPublish(ErrBufferFull)
		p.log.Debug().Str("event_id", ev.ID).Msg("Event buffer full, dropping click event")
	}
}

// Pending returns the number of queued events.
func (p *Publisher) Pending() int {
	return len(p.queue)
}

// Serve drains the queue until ctx is cancelled. Events still queued at
// shutdown are flushed with a fresh timeout before the transport is closed.
func (p *Publisher) Serve(ctx context.Context) error {
	p.log.Info().Msg("Event publisher started")
	defer p.close()

	for {
		select {
		case <-ctx.Done():
			p.flush()
			p.log.Info().Msg("Event publisher stopped")
			return ctx.Err()
		case ev := <-p.queue:
			p.send(ctx, ev)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (p *Publisher) String() string {
	return "event-publisher"
}

func (p *Publisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	for {
		select {
		case ev := <-p.queue:
			p.send(ctx, ev)
		default:
			return
		}
	}
}

func (p *Publisher) send(ctx context.Context, ev models.ClickEvent) {
	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.transport.Send(sendCtx, ev)
	})
	metrics.RecordEventPublish(err)

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		p.log.Warn().Err(err).Str("event_id", ev.ID).Str("room", ev.Room).Msg("Failed to publish click event")
	}
}

func (p *Publisher) close() {
	p.closeOnce.Do(func() {
		if err := p.transport.Close(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to close event transport")
		}
	})
}

// Nop discards every event.
type Nop struct{}

// Publish implements leaderboard.EventSink.
func (Nop) Publish(models.ClickEvent) {}

