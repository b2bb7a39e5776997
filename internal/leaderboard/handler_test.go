// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package leaderboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ritualboard/internal/models"
)

// fakeSession records what the handler sends.
type fakeSession struct {
	id  uint64
	loc models.Location

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (s *fakeSession) ID() uint64                { return s.id }
func (s *fakeSession) Location() models.Location { return s.loc }

func (s *fakeSession) Send(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sent = append(s.sent, msg)
	return true
}

func (s *fakeSession) messages() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.sent...)
}

func TestHandler_OnConnectSendsSnapshot(t *testing.T) {
	room := newTestRoom(t, nil)
	h := NewHandler(room.agg)
	mustApply(t, room.agg, loc("US", "CA"), 5)

	s := &fakeSession{id: 1, loc: loc("US", "CA")}
	h.OnConnect(context.Background(), s)

	msgs := s.messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(msgs))
	}
	var u models.UpdateMessage
	if err := json.Unmarshal(msgs[0], &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if u.Type != models.MessageTypeUpdate || u.State["US"].Score != 5 {
		t.Errorf("snapshot = %+v", u)
	}
}

func TestHandler_OnConnectEmptyRoom(t *testing.T) {
	room := newTestRoom(t, nil)
	h := NewHandler(room.agg)

	s := &fakeSession{id: 1}
	h.OnConnect(context.Background(), s)

	msgs := s.messages()
	if len(msgs) != 1 || string(msgs[0]) != `{"type":"LB_UPDATE","state":{}}` {
		t.Errorf("sent %q, want an empty LB_UPDATE", msgs)
	}
}

func TestHandler_OnConnectLoadFailure(t *testing.T) {
	room := newTestRoom(t, nil)
	room.store.failLoad = true
	h := NewHandler(room.agg)

	s := &fakeSession{id: 1}
	h.OnConnect(context.Background(), s)
	if n := len(s.messages()); n != 0 {
		t.Errorf("sent %d messages on load failure, want 0", n)
	}
}

func TestHandler_OnMessage(t *testing.T) {
	room := newTestRoom(t, nil)
	h := NewHandler(room.agg)
	ca := &fakeSession{id: 1, loc: loc("US", "CA")}
	tx := &fakeSession{id: 2, loc: loc("US", "TX")}
	ctx := context.Background()

	h.OnMessage(ctx, ca, []byte(`{"type":"LB_CLICK","count":5}`))
	h.OnMessage(ctx, tx, []byte(`{"type":"LB_CLICK","count":3}`))

	// None of these change anything or reply.
	for _, frame := range []string{
		`{"type":"LB_CLICK","count":0}`,
		`{"type":"LB_CLICK","count":-4}`,
		`{"type":"LB_CLICK","count":2.5}`,
		`{"type":"LB_CLICK","count":"9"}`,
		`{"type":"LB_CLICK","count":5000}`,
		`{"type":"CHAT","text":"hi"}`,
		`garbage`,
	} {
		h.OnMessage(ctx, ca, []byte(frame))
	}

	if len(ca.messages()) != 0 || len(tx.messages()) != 0 {
		t.Error("handler replied to a click frame")
	}

	us := snapshotState(t, room.agg)["US"]
	if us.Score != 8 || us.Regions["CA"] != 5 || us.Regions["TX"] != 3 {
		t.Errorf("US = %+v, want 8 {CA:5 TX:3}", us)
	}

	room.clock.Advance(time.Second)
	if n := len(room.bc.updates(t)); n != 1 {
		t.Errorf("broadcasts = %d, want 1", n)
	}
}

func TestHandler_OnMessagePersistFailureIsSilent(t *testing.T) {
	room := newTestRoom(t, nil)
	h := NewHandler(room.agg)
	s := &fakeSession{id: 1, loc: loc("NZ", "AUK")}

	room.store.setFailSave(true)
	h.OnMessage(context.Background(), s, []byte(`{"type":"LB_CLICK","count":2}`))

	if len(s.messages()) != 0 {
		t.Error("handler replied after a persist failure")
	}
	if _, ok := snapshotState(t, room.agg)["NZ"]; ok {
		t.Error("failed increment is visible in the aggregate")
	}
	h.OnDisconnect(context.Background(), s)
}

func TestHandler_Aggregator(t *testing.T) {
	room := newTestRoom(t, nil)
	if NewHandler(room.agg).Aggregator() != room.agg {
		t.Error("Aggregator() did not return the wrapped aggregator")
	}
}
