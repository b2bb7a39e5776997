// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
)

// ErrHubClosed is returned by Join once the hub has stopped.
var ErrHubClosed = errors.New("websocket: hub closed")

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Session is the view of a connection that a RoomHandler sees.
type Session interface {
	ID() uint64
	Location() models.Location
	// Send queues msg without blocking. It reports false when the
	// connection could not take it; such a connection is being closed.
	Send(msg []byte) bool
}

// RoomHandler gives a room its semantics. A hub calls its handler from the
// hub goroutine only, one call at a time.
type RoomHandler interface {
	OnConnect(ctx context.Context, s Session)
	OnMessage(ctx context.Context, s Session, data []byte)
	OnDisconnect(ctx context.Context, s Session)
}

// Options tune the connections of a hub.
type Options struct {
	// Kind labels the hub's metrics ("leaderboard" or "game").
	Kind string

	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration

	// MessageRate limits inbound frames per second per connection; 0 disables.
	MessageRate  float64
	MessageBurst int
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.Kind == "" {
		o.Kind = "game"
	}
	return o
}

type inboundMessage struct {
	client *Client
	data   []byte
}

// Hub owns the connections of one room. Membership changes, inbound
// messages and broadcasts are all processed by the single goroutine running
// Run, so a room sees its events strictly in order.
type Hub struct {
	id   string
	opts Options
	log  zerolog.Logger

	// clients is owned by the Run goroutine.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	broadcast  chan []byte

	done      chan struct{}
	closeOnce sync.Once

	count      atomic.Int64
	emptySince atomic.Int64
}

// NewHub creates a hub for room id. Call Run to start it.
func NewHub(id string, opts Options) *Hub {
	opts = opts.withDefaults()
	h := &Hub{
		id:         id,
		opts:       opts,
		log:        logging.WithComponent("websocket-hub").With().Str("room", id).Logger(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage, opts.SendBuffer),
		broadcast:  make(chan []byte, opts.SendBuffer),
		done:       make(chan struct{}),
	}
	h.emptySince.Store(time.Now().UnixNano())
	return h
}

// ID returns the room id.
func (h *Hub) ID() string {
	return h.id
}

// Kind returns the metrics label of the hub.
func (h *Hub) Kind() string {
	return h.opts.Kind
}

// Options returns the connection options of the hub.
func (h *Hub) Options() Options {
	return h.opts
}

// Done is closed when the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// EmptySince returns when the hub last became empty, or the zero time if
// it has clients.
func (h *Hub) EmptySince() time.Time {
	if h.ClientCount() > 0 {
		return time.Time{}
	}
	return time.Unix(0, h.emptySince.Load())
}

// Join registers c with the hub.
func (h *Hub) Join(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Leave unregisters c. It is a no-op once the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every connected client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- msg:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_queue_full").Inc()
		h.log.Warn().Msg("broadcast channel full, dropping message")
	}
}

// Fanout sends msg to every client except the one given. It must only be
// called from a RoomHandler callback.
func (h *Hub) Fanout(msg []byte, except Session) int {
	sent := 0
	for _, c := range h.sortedClients() {
		if except != nil && Session(c) == except {
			continue
		}
		if c.Send(msg) {
			sent++
		}
	}
	metrics.WSMessagesSent.WithLabelValues(h.opts.Kind).Add(float64(sent))
	return sent
}

// Run processes hub events until ctx is canceled. It returns ctx.Err().
//
// Lifecycle events are taken before inbound messages and broadcasts so
// that client state is consistent before messages are handled.
func (h *Hub) Run(ctx context.Context, handler RoomHandler) error {
	defer h.closeOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.addClient(ctx, handler, c)
			continue
		case c := <-h.unregister:
			h.removeClient(ctx, handler, c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.addClient(ctx, handler, c)
		case c := <-h.unregister:
			h.removeClient(ctx, handler, c)
		case in := <-h.inbound:
			if h.clients[in.client] {
				metrics.WSMessagesReceived.WithLabelValues(h.opts.Kind).Inc()
				handler.OnMessage(ctx, in.client, in.data)
			}
		case msg := <-h.broadcast:
			h.Fanout(msg, nil)
		}
	}
}

func (h *Hub) addClient(ctx context.Context, handler RoomHandler, c *Client) {
	h.clients[c] = true
	h.count.Add(1)
	metrics.WSConnections.WithLabelValues(h.opts.Kind).Inc()

	h.log.Debug().
		Uint64("client_id", c.id).
		Str("country", c.location.Country).
		Int("total_clients", len(h.clients)).
		Msg("websocket client connected")

	handler.OnConnect(ctx, c)
}

func (h *Hub) removeClient(ctx context.Context, handler RoomHandler, c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	c.closeSend()
	if h.count.Add(-1) == 0 {
		h.emptySince.Store(time.Now().UnixNano())
	}
	metrics.WSConnections.WithLabelValues(h.opts.Kind).Dec()

	h.log.Debug().
		Uint64("client_id", c.id).
		Int("total_clients", len(h.clients)).
		Msg("websocket client disconnected")

	handler.OnDisconnect(ctx, c)
}

// shutdown closes every connection. Handlers are not notified.
func (h *Hub) shutdown(ctx context.Context) {
	h.closeOnce.Do(func() { close(h.done) })

	closed := 0
	for _, c := range h.sortedClients() {
		delete(h.clients, c)
		c.closeSend()
		closed++
	}
	metrics.WSConnections.WithLabelValues(h.opts.Kind).Sub(float64(closed))
	h.count.Store(0)
	h.emptySince.Store(time.Now().UnixNano())

	h.log.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the clients in connection order.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}
