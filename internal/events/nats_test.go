// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

//go:build nats

package events

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/models"
)

func TestNATSTransport_EmbeddedRoundTrip(t *testing.T) {
	transport, err := Open(config.EventsConfig{
		Enabled:  true,
		Subject:  "ritualboard.clicks",
		Embedded: true,
		StoreDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer transport.Close()

	nc, err := natsgo.Connect(transport.embedded.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	received := make(chan *natsgo.Msg, 1)
	sub, err := nc.ChanSubscribe("ritualboard.clicks", received)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := models.ClickEvent{ID: "evt-1", Room: "global-leaderboard", Country: "US", Region: "CA", Count: 5, Score: 5, At: 1700000000000}
	if err := transport.Send(context.Background(), want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case msg := <-received:
		var got models.ClickEvent
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != want {
			t.Errorf("event = %+v, want %+v", got, want)
		}
		if id := msg.Header.Get(natsgo.MsgIdHdr); id != "evt-1" {
			t.Errorf("Nats-Msg-Id = %q, want %q", id, "evt-1")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}

	if err := transport.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := transport.Send(context.Background(), want); err == nil {
		t.Error("Send() after Close succeeded, want error")
	}
}
