// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/leaderboard"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
	"github.com/tomtom215/ritualboard/internal/storage"
	"github.com/tomtom215/ritualboard/internal/validation"
	"github.com/tomtom215/ritualboard/internal/websocket"
)

var (
	// ErrInvalidRoomID is returned for ids outside [A-Za-z0-9_-]{1,64}.
	ErrInvalidRoomID = errors.New("room: invalid room id")

	// ErrTooManyRooms is returned when the game room limit is reached and
	// no empty room can be evicted.
	ErrTooManyRooms = errors.New("room: game room limit reached")

	// ErrClosed is returned once the registry has shut down.
	ErrClosed = errors.New("room: registry closed")
)

// Options configure a Registry.
type Options struct {
	// LeaderboardID is the id of the leaderboard room. Default
	// config.LeaderboardRoomID.
	LeaderboardID string

	Leaderboard config.LeaderboardConfig
	Rooms       config.RoomsConfig

	Store            storage.Store
	OperationTimeout time.Duration

	// Events receives click events from the leaderboard. Optional.
	Events leaderboard.EventSink

	// Clock drives the leaderboard broadcast scheduler. Default
	// leaderboard.SystemClock.
	Clock leaderboard.Clock
}

// Room is a running hub and the state behind it.
type Room struct {
	id      string
	kind    Kind
	hub     *websocket.Hub
	agg     *leaderboard.Aggregator
	cancel  context.CancelFunc
	stopped chan struct{}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// Kind returns the room kind.
func (r *Room) Kind() Kind { return r.kind }

// Hub returns the hub serving the room.
func (r *Room) Hub() *websocket.Hub { return r.hub }

// Aggregator returns the leaderboard aggregator, or nil for a game room.
func (r *Room) Aggregator() *leaderboard.Aggregator { return r.agg }

// ClientCount returns the number of connections in the room.
func (r *Room) ClientCount() int { return r.hub.ClientCount() }

// Stopped is closed once the room's hub has exited.
func (r *Room) Stopped() <-chan struct{} { return r.stopped }

// Registry owns every live room.
type Registry struct {
	opts Options
	log  zerolog.Logger

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu     sync.Mutex
	rooms  map[string]*Room
	games  int
	closed bool

	leaderboard *Room
}

// NewRegistry creates a registry and starts the leaderboard room. The
// leaderboard aggregate itself is loaded lazily; call
// Leaderboard().Aggregator().Load to warm it.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.LeaderboardID == "" {
		opts.LeaderboardID = config.LeaderboardRoomID
	}
	if !validation.ValidRoomID(opts.LeaderboardID) {
		return nil, fmt.Errorf("%w: leaderboard id %q", ErrInvalidRoomID, opts.LeaderboardID)
	}
	if opts.Store == nil {
		return nil, errors.New("room: store is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		opts:      opts,
		log:       logging.WithComponent("rooms"),
		baseCtx:   ctx,
		cancelAll: cancel,
		rooms:     make(map[string]*Room),
	}

	r.mu.Lock()
	r.leaderboard = r.startLocked(opts.LeaderboardID)
	r.mu.Unlock()

	return r, nil
}

// Leaderboard returns the leaderboard room.
func (r *Registry) Leaderboard() *Room {
	return r.leaderboard
}

// Get returns the room with the given id, creating it if needed.
func (r *Registry) Get(id string) (*Room, error) {
	if !validation.ValidRoomID(id) {
		return nil, ErrInvalidRoomID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if room, ok := r.rooms[id]; ok {
		return room, nil
	}

	if limit := r.opts.Rooms.MaxGameRooms; limit > 0 && r.games >= limit {
		r.sweepLocked(time.Now(), 0)
		if r.games >= limit {
			return nil, ErrTooManyRooms
		}
	}
	return r.startLocked(id), nil
}

// Lookup returns the room with the given id without creating it.
func (r *Registry) Lookup(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Connect attaches conn to room id. A room evicted between lookup and join
// is recreated once.
func (r *Registry) Connect(id string, conn *gorillaws.Conn, loc models.Location) error {
	for attempt := 0; attempt < 2; attempt++ {
		room, err := r.Get(id)
		if err != nil {
			return err
		}
		err = websocket.NewClient(room.hub, conn, loc).Start()
		if !errors.Is(err, websocket.ErrHubClosed) {
			return err
		}
	}
	return websocket.ErrHubClosed
}

// Stats returns the number of live rooms and connections.
func (r *Registry) Stats() (rooms, connections int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		connections += room.hub.ClientCount()
	}
	return len(r.rooms), connections
}

// IDs returns the ids of all live rooms in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep evicts game rooms that have been empty for at least the idle
// timeout as of now. It returns the number of rooms evicted.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now, r.opts.Rooms.IdleTimeout)
}

// Serve implements suture.Service. It runs the idle-room janitor and
// closes every room when ctx is canceled.
func (r *Registry) Serve(ctx context.Context) error {
	interval := r.opts.Rooms.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return ctx.Err()
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("Evicted idle game rooms")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (r *Registry) String() string {
	return "room-registry"
}

// Close stops every room and waits for their hubs to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, room := range r.rooms {
		metrics.RoomsActive.WithLabelValues(room.kind.String()).Dec()
		delete(r.rooms, id)
	}
	r.games = 0
	r.mu.Unlock()

	r.cancelAll()
	r.wg.Wait()
	r.log.Info().Msg("All rooms stopped")
}

// startLocked creates and starts room id. It must be called with r.mu held.
func (r *Registry) startLocked(id string) *Room {
	kind := KindOf(id, r.opts.LeaderboardID)
	hub := websocket.NewHub(id, websocket.Options{
		Kind:           kind.String(),
		SendBuffer:     r.opts.Rooms.SendBufferSize,
		MaxMessageSize: r.opts.Rooms.MaxMessageSize,
		WriteWait:      r.opts.Rooms.WriteWait,
		PongWait:       r.opts.Rooms.PongWait,
		MessageRate:    r.opts.Rooms.MessageRate,
		MessageBurst:   r.opts.Rooms.MessageBurst,
	})
	room := &Room{id: id, kind: kind, hub: hub, stopped: make(chan struct{})}

	var handler websocket.RoomHandler
	switch kind {
	case KindLeaderboard:
		room.agg = leaderboard.NewAggregator(leaderboard.Options{
			RoomID:           id,
			Store:            r.opts.Store,
			Broadcaster:      hub,
			Events:           r.opts.Events,
			Clock:            r.opts.Clock,
			BroadcastDelay:   r.opts.Leaderboard.BroadcastDelay,
			MaxClickBatch:    r.opts.Leaderboard.MaxClickBatch,
			OperationTimeout: r.opts.OperationTimeout,
		})
		handler = leaderboard.NewHandler(room.agg)
	case KindGame:
		handler = &gameHandler{hub: hub}
		r.games++
	}

	ctx, cancel := context.WithCancel(r.baseCtx)
	room.cancel = cancel
	r.rooms[id] = room
	metrics.RoomsActive.WithLabelValues(kind.String()).Inc()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(room.stopped)
		_ = hub.Run(ctx, handler)
		if room.agg != nil {
			room.agg.Close()
		}
	}()

	r.log.Debug().Str("room", id).Str("kind", kind.String()).Msg("Room started")
	return room
}

// sweepLocked evicts empty game rooms idle for at least minIdle. It must be
// called with r.mu held.
func (r *Registry) sweepLocked(now time.Time, minIdle time.Duration) int {
	evicted := 0
	for id, room := range r.rooms {
		if room.kind != KindGame || room.hub.ClientCount() > 0 {
			continue
		}
		since := room.hub.EmptySince()
		if since.IsZero() || now.Sub(since) < minIdle {
			continue
		}

		delete(r.rooms, id)
		r.games--
		room.cancel()
		metrics.RoomsActive.WithLabelValues(room.kind.String()).Dec()
		metrics.RoomsEvicted.Inc()
		evicted++
	}
	return evicted
}
