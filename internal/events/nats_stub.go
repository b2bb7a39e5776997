// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

//go:build !nats

package events

import (
	"context"
	"errors"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/models"
)

// ErrNATSUnavailable is returned by Open when the binary was built without
// NATS support.
var ErrNATSUnavailable = errors.New("NATS event transport not available: build with -tags=nats")

// NATSTransport is a stub when NATS dependencies are not compiled in.
type NATSTransport struct{}

// Open always fails in builds without the nats tag.
func Open(config.EventsConfig) (*NATSTransport, error) {
	return nil, ErrNATSUnavailable
}

// Send is a stub that returns ErrNATSUnavailable.
func (t *NATSTransport) Send(context.Context, models.ClickEvent) error {
	return ErrNATSUnavailable
}

// Close is a no-op stub.
func (t *NATSTransport) Close() error {
	return nil
}
