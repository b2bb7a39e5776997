// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// recordingHandler records handler calls and echoes messages when asked.
type recordingHandler struct {
	mu           sync.Mutex
	connects     []uint64
	disconnects  []uint64
	messages     []string
	greeting     []byte
	onMessageHub func(s Session, data []byte)
}

func (r *recordingHandler) OnConnect(_ context.Context, s Session) {
	r.mu.Lock()
	r.connects = append(r.connects, s.ID())
	r.mu.Unlock()
	if r.greeting != nil {
		s.Send(r.greeting)
	}
}

func (r *recordingHandler) OnMessage(_ context.Context, s Session, data []byte) {
	r.mu.Lock()
	r.messages = append(r.messages, string(data))
	fn := r.onMessageHub
	r.mu.Unlock()
	if fn != nil {
		fn(s, data)
	}
}

func (r *recordingHandler) OnDisconnect(_ context.Context, s Session) {
	r.mu.Lock()
	r.disconnects = append(r.disconnects, s.ID())
	r.mu.Unlock()
}

func (r *recordingHandler) snapshot() (connects, disconnects int, messages []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connects), len(r.disconnects), append([]string(nil), r.messages...)
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T, opts Options, handler RoomHandler) *Hub {
	t.Helper()
	hub := NewHub("test-room", opts)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Run(ctx, handler) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub
}

// joinClient registers a client without a network connection.
func joinClient(t *testing.T, hub *Hub, loc models.Location) *Client {
	t.Helper()
	c := NewClient(hub, nil, loc)
	if err := hub.Join(c); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}

func TestNewHub_Defaults(t *testing.T) {
	hub := NewHub("room-a", Options{})

	if hub.ID() != "room-a" {
		t.Errorf("ID() = %q, want room-a", hub.ID())
	}
	opts := hub.Options()
	if opts.SendBuffer != 256 || opts.MaxMessageSize != 4096 {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Kind != "game" {
		t.Errorf("Kind = %q, want game", opts.Kind)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
	if hub.EmptySince().IsZero() {
		t.Error("EmptySince() should be set for a new hub")
	}
}

func TestHub_ConnectSendsGreeting(t *testing.T) {
	handler := &recordingHandler{greeting: []byte(`{"type":"LB_UPDATE","state":{}}`)}
	hub := startHub(t, Options{}, handler)

	c := joinClient(t, hub, models.Location{Country: "US"})

	if got := string(receive(t, c)); got != `{"type":"LB_UPDATE","state":{}}` {
		t.Errorf("greeting = %s", got)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
	if !hub.EmptySince().IsZero() {
		t.Error("EmptySince() should be zero while clients are connected")
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t, Options{}, &recordingHandler{})

	clients := []*Client{
		joinClient(t, hub, models.Location{Country: "US"}),
		joinClient(t, hub, models.Location{Country: "DE"}),
		joinClient(t, hub, models.Location{Country: "JP"}),
	}

	hub.Broadcast([]byte("hello"))

	for i, c := range clients {
		if got := string(receive(t, c)); got != "hello" {
			t.Errorf("client %d got %q, want hello", i, got)
		}
	}
}

func TestHub_SlowClientDoesNotBlockOthers(t *testing.T) {
	hub := startHub(t, Options{SendBuffer: 1}, &recordingHandler{})

	slow := joinClient(t, hub, models.Location{})
	fast := joinClient(t, hub, models.Location{})

	hub.Broadcast([]byte("one"))
	if got := string(receive(t, fast)); got != "one" {
		t.Fatalf("fast got %q", got)
	}

	// slow never drains, so the second message overflows its buffer.
	hub.Broadcast([]byte("two"))
	if got := string(receive(t, fast)); got != "two" {
		t.Fatalf("fast got %q", got)
	}

	if got := string(receive(t, slow)); got != "one" {
		t.Errorf("slow first message = %q, want one", got)
	}
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("slow client should have been cut off")
		}
	case <-time.After(time.Second):
		t.Error("slow client send channel was not closed")
	}
}

func TestHub_InboundMessagesInOrder(t *testing.T) {
	handler := &recordingHandler{}
	hub := startHub(t, Options{}, handler)

	c := joinClient(t, hub, models.Location{})
	for _, m := range []string{"1", "2", "3", "4"} {
		hub.inbound <- inboundMessage{client: c, data: []byte(m)}
	}

	eventually(t, func() bool {
		_, _, msgs := handler.snapshot()
		return len(msgs) == 4
	}, "four messages handled")

	_, _, msgs := handler.snapshot()
	for i, want := range []string{"1", "2", "3", "4"} {
		if msgs[i] != want {
			t.Errorf("message %d = %q, want %q", i, msgs[i], want)
		}
	}
}

func TestHub_IgnoresMessagesFromUnregisteredClients(t *testing.T) {
	handler := &recordingHandler{}
	hub := startHub(t, Options{}, handler)

	stranger := NewClient(hub, nil, models.Location{})
	member := joinClient(t, hub, models.Location{})

	hub.inbound <- inboundMessage{client: stranger, data: []byte("ignored")}
	hub.inbound <- inboundMessage{client: member, data: []byte("handled")}

	eventually(t, func() bool {
		_, _, msgs := handler.snapshot()
		return len(msgs) == 1
	}, "member message handled")

	if _, _, msgs := handler.snapshot(); msgs[0] != "handled" {
		t.Errorf("messages = %v, want [handled]", msgs)
	}
}

func TestHub_LeaveNotifiesHandler(t *testing.T) {
	handler := &recordingHandler{}
	hub := startHub(t, Options{}, handler)

	c := joinClient(t, hub, models.Location{})
	hub.Leave(c)
	hub.Leave(c)

	eventually(t, func() bool { return hub.ClientCount() == 0 }, "client removed")

	connects, disconnects, _ := handler.snapshot()
	if connects != 1 || disconnects != 1 {
		t.Errorf("connects = %d, disconnects = %d, want 1 and 1", connects, disconnects)
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after Leave")
	}
	if hub.EmptySince().IsZero() {
		t.Error("EmptySince() should be set after the last client left")
	}
}

func TestHub_FanoutExcept(t *testing.T) {
	handler := &recordingHandler{}
	hub := startHub(t, Options{}, handler)
	handler.onMessageHub = func(s Session, data []byte) {
		hub.Fanout(data, s)
	}

	sender := joinClient(t, hub, models.Location{})
	peer := joinClient(t, hub, models.Location{})

	hub.inbound <- inboundMessage{client: sender, data: []byte(`{"move":"e4"}`)}

	if got := string(receive(t, peer)); got != `{"move":"e4"}` {
		t.Errorf("peer got %q", got)
	}
	select {
	case msg := <-sender.send:
		t.Errorf("sender received its own message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_JoinAfterStop(t *testing.T) {
	hub := NewHub("stopped", Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx, &recordingHandler{}) }()

	c := joinClient(t, hub, models.Location{})
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed on shutdown")
	}
	if err := hub.Join(NewClient(hub, nil, models.Location{})); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Join() after stop error = %v, want ErrHubClosed", err)
	}

	// Neither call may block once the hub is gone.
	hub.Leave(c)
	hub.Broadcast([]byte("late"))

	select {
	case <-hub.Done():
	default:
		t.Error("Done() not closed after Run returned")
	}
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %s", got)
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %s", got)
	}
}
