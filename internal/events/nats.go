// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

//go:build nats

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/models"
)

// NATSTransport publishes click events to a NATS subject through Watermill.
type NATSTransport struct {
	publisher message.Publisher
	subject   string
	embedded  *EmbeddedServer

	mu     sync.RWMutex
	closed bool
}

// Open builds the NATS transport described by cfg, starting an embedded
// server first when cfg.Embedded is set.
func Open(cfg config.EventsConfig) (*NATSTransport, error) {
	url := cfg.URL

	var embedded *EmbeddedServer
	if cfg.Embedded {
		srv, err := NewEmbeddedServer(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		embedded = srv
		url = srv.ClientURL()
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsOpts := []natsgo.Option{
		natsgo.Name("ritualboard"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	logging.Info().Str("url", url).Str("subject", cfg.Subject).Bool("embedded", cfg.Embedded).Msg("Click events will be published to NATS")

	return &NATSTransport{
		publisher: pub,
		subject:   cfg.Subject,
		embedded:  embedded,
	}, nil
}

// Send publishes ev. The event ID doubles as the Nats-Msg-Id header.
func (t *NATSTransport) Send(_ context.Context, ev models.ClickEvent) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return fmt.Errorf("event transport is closed")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal click event: %w", err)
	}

	msg := message.NewMessage(ev.ID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.ID)
	msg.Metadata.Set("room", ev.Room)
	msg.Metadata.Set("country", ev.Country)
	msg.Metadata.Set("count", strconv.FormatInt(ev.Count, 10))

	return t.publisher.Publish(t.subject, msg)
}

// Close closes the publisher and then any embedded server.
func (t *NATSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	err := t.publisher.Close()
	if t.embedded != nil {
		t.embedded.Shutdown()
	}
	return err
}

// EmbeddedServer is an in-process NATS server for single-instance
// deployments.
type EmbeddedServer struct {
	server *server.Server
}

// NewEmbeddedServer starts a loopback-only NATS server with JetStream
// storage under storeDir, so operators can attach streams to the click
// subject.
func NewEmbeddedServer(storeDir string) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "ritualboard-events",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  true,
		StoreDir:   storeDir,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{server: ns}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.server.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
