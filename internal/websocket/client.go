// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
)

// clientIDCounter gives clients monotonically increasing ids so that
// fan-out order is stable.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id       uint64
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	location models.Location
	limiter  *rate.Limiter
	log      zerolog.Logger

	// sendClosed is owned by the hub goroutine.
	sendClosed bool
}

// NewClient creates a client for conn. The location is resolved once by
// the caller and cached for the life of the connection.
func NewClient(hub *Hub, conn *websocket.Conn, loc models.Location) *Client {
	c := &Client{
		id:       clientIDCounter.Add(1),
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.opts.SendBuffer),
		location: loc,
	}
	c.log = hub.log.With().Uint64("client_id", c.id).Logger()
	if hub.opts.MessageRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(hub.opts.MessageRate), hub.opts.MessageBurst)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Location returns the location resolved when the client connected.
func (c *Client) Location() models.Location {
	return c.location
}

// Send queues msg for the write pump. A client whose buffer is full is
// cut off: its send channel is closed, which makes the write pump close
// the connection, and the read pump then unregisters it.
func (c *Client) Send(msg []byte) bool {
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		metrics.WSErrors.WithLabelValues("send_buffer_full").Inc()
		c.log.Warn().Msg("client send buffer full, closing connection")
		c.closeSend()
		return false
	}
}

func (c *Client) closeSend() {
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// Start joins the hub and begins reading and writing. It returns
// ErrHubClosed if the hub has already stopped.
func (c *Client) Start() error {
	if err := c.hub.Join(c); err != nil {
		return err
	}
	go c.writePump()
	go c.readPump()
	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		_ = c.conn.Close()
	}()

	opts := c.hub.opts
	c.conn.SetReadLimit(opts.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(opts.PongWait)); err != nil {
		c.log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				c.log.Debug().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			metrics.WSMessagesDropped.WithLabelValues("binary").Inc()
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			metrics.WSMessagesDropped.WithLabelValues("rate_limited").Inc()
			continue
		}

		select {
		case c.hub.inbound <- inboundMessage{client: c, data: data}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				c.log.Debug().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
