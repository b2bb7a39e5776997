// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/metrics"
	"github.com/tomtom215/ritualboard/internal/models"
	"github.com/tomtom215/ritualboard/internal/storage"
)

// ErrInvalidCount is returned for a click count that is not a positive
// integer within the batch limit.
var ErrInvalidCount = errors.New("leaderboard: count must be a positive integer")

// ErrScoreOverflow is returned when an increment would push a counter past
// the int64 range. The aggregate is left unchanged.
var ErrScoreOverflow = errors.New("leaderboard: increment would overflow score")

// errNoCountry is returned for a location that was never resolved.
var errNoCountry = errors.New("leaderboard: location has no country")

// Broadcaster delivers an encoded message to every client of a room.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// EventSink receives a ClickEvent for every applied increment. Publish
// must not block.
type EventSink interface {
	Publish(ev models.ClickEvent)
}

// Options configure an Aggregator.
type Options struct {
	RoomID      string
	Store       storage.Store
	Broadcaster Broadcaster
	Events      EventSink
	Clock       Clock

	BroadcastDelay   time.Duration
	MaxClickBatch    int64
	OperationTimeout time.Duration
}

// update is the payload carried from a mutation to its broadcast. Both
// fields are treated as immutable once captured.
type update struct {
	state models.GlobalAggregate
	meta  *models.LeaderboardMetadata
}

// Aggregator owns the aggregate of one leaderboard room.
//
// The current aggregate is never modified in place: every mutation builds
// the next aggregate from a shallow copy of the country map plus a clone of
// the touched country, so snapshots handed out earlier stay valid.
type Aggregator struct {
	roomID      string
	key         string
	store       storage.Store
	broadcaster Broadcaster
	events      EventSink
	clock       Clock
	maxBatch    int64
	timeout     time.Duration
	scheduler   *Scheduler[update]

	mu      sync.Mutex
	state   models.GlobalAggregate
	meta    *models.LeaderboardMetadata
	version uint64
	loaded  atomic.Bool
}

// NewAggregator creates an aggregator. The aggregate is loaded lazily on
// first use, or eagerly with Load.
func NewAggregator(opts Options) *Aggregator {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	delay := opts.BroadcastDelay
	if delay <= 0 {
		delay = time.Second
	}

	a := &Aggregator{
		roomID:      opts.RoomID,
		key:         storage.RoomKey(opts.RoomID),
		store:       opts.Store,
		broadcaster: opts.Broadcaster,
		events:      opts.Events,
		clock:       clock,
		maxBatch:    opts.MaxClickBatch,
		timeout:     opts.OperationTimeout,
		state:       models.GlobalAggregate{},
	}
	a.scheduler = NewScheduler(delay, clock, a.broadcast)
	return a
}

// RoomID returns the room this aggregator serves.
func (a *Aggregator) RoomID() string {
	return a.roomID
}

// Loaded reports whether the aggregate has been read from storage.
func (a *Aggregator) Loaded() bool {
	return a.loaded.Load()
}

// Load reads the aggregate from storage if it is not cached yet.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureLoaded(ctx)
}

// ApplyIncrement adds count clicks from loc to the aggregate and persists
// the result. Nothing changes in memory unless the write succeeds.
func (a *Aggregator) ApplyIncrement(ctx context.Context, loc models.Location, count int64) error {
	if count <= 0 || (a.maxBatch > 0 && count > a.maxBatch) {
		metrics.RecordIncrement("rejected", count)
		return ErrInvalidCount
	}
	code := strings.ToUpper(strings.TrimSpace(loc.Country))
	if code == "" {
		metrics.RecordIncrement("rejected", count)
		return errNoCountry
	}
	region := loc.RegionKey()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		metrics.RecordIncrement("persist_failed", count)
		logging.Error().Err(err).Str("room", a.roomID).Msg("Failed to load leaderboard, dropping increment")
		return err
	}

	now := a.clock.Now().UnixMilli()

	next := make(models.GlobalAggregate, len(a.state)+1)
	for k, v := range a.state {
		next[k] = v
	}
	country := a.state[code].Clone()
	if country == nil {
		country = &models.CountryAggregate{
			Name:    models.CountryName(code),
			Regions: make(map[string]int64),
		}
	}
	var globalClicks int64
	if a.meta != nil {
		globalClicks = a.meta.TotalGlobalClicks
	}
	if wouldOverflow(count, country.Score, country.Regions[region], country.TotalClicks, globalClicks) {
		metrics.RecordIncrement("rejected", count)
		logging.Warn().
			Str("room", a.roomID).
			Str("country", code).
			Int64("count", count).
			Msg("Rejected increment that would overflow the leaderboard")
		return ErrScoreOverflow
	}
	country.Score += count
	country.Regions[region] += count
	country.TotalClicks += count
	country.LastUpdated = now
	next[code] = country

	meta := a.meta.Clone()
	if meta == nil {
		meta = &models.LeaderboardMetadata{CreatedAt: now, Version: models.MetadataSchemaVersion}
	}
	meta.TotalGlobalClicks += count

	if err := a.commit(ctx, next, meta); err != nil {
		metrics.RecordIncrement("persist_failed", count)
		logging.Error().
			Err(err).
			Str("room", a.roomID).
			Str("country", code).
			Str("region", region).
			Int64("count", count).
			Msg("Failed to persist leaderboard increment, dropping it")
		return err
	}
	metrics.RecordIncrement("applied", count)

	a.scheduler.Notify(update{state: next, meta: meta})

	if a.events != nil {
		a.events.Publish(models.ClickEvent{
			ID:      uuid.NewString(),
			Room:    a.roomID,
			Country: code,
			Region:  region,
			Count:   count,
			Score:   country.Score,
			At:      now,
		})
	}
	return nil
}

func wouldOverflow(count int64, counters ...int64) bool {
	for _, c := range counters {
		if c > math.MaxInt64-count {
			return true
		}
	}
	return false
}

// Reset clears the aggregate, records the reset time in the metadata and
// schedules a broadcast of the empty board.
func (a *Aggregator) Reset(ctx context.Context) (models.ResetResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		return models.ResetResult{}, err
	}

	now := a.clock.Now().UnixMilli()
	meta := a.meta.Clone()
	if meta == nil {
		meta = &models.LeaderboardMetadata{CreatedAt: now, Version: models.MetadataSchemaVersion}
	}
	meta.TotalGlobalClicks = 0
	meta.LastReset = now

	cleared := len(a.state)
	next := models.GlobalAggregate{}
	if err := a.commit(ctx, next, meta); err != nil {
		return models.ResetResult{}, err
	}

	metrics.LeaderboardResets.Inc()
	logging.Info().Str("room", a.roomID).Int("countries_cleared", cleared).Msg("Leaderboard reset")

	a.scheduler.Notify(update{state: next, meta: meta})
	return models.ResetResult{Room: a.roomID, LastReset: now, Cleared: cleared}, nil
}

// Snapshot returns the current aggregate as an LB_UPDATE message. The
// message shares immutable data with the aggregator and must not be
// modified.
func (a *Aggregator) Snapshot(ctx context.Context) (*models.UpdateMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return models.NewUpdateMessage(a.state, a.meta), nil
}

// Close stops the broadcast scheduler. A pending broadcast is discarded.
func (a *Aggregator) Close() {
	a.scheduler.Stop()
}

// ensureLoaded must be called with a.mu held.
func (a *Aggregator) ensureLoaded(ctx context.Context) error {
	if a.loaded.Load() {
		return nil
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	rec, err := a.store.Load(ctx, a.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.state = models.GlobalAggregate{}
		a.meta = nil
		a.version = 0
	case err != nil:
		return fmt.Errorf("load room %s: %w", a.roomID, err)
	default:
		a.state = rec.State
		if a.state == nil {
			a.state = models.GlobalAggregate{}
		}
		a.meta = rec.Metadata
		a.version = rec.Version
	}

	a.loaded.Store(true)
	metrics.LeaderboardCountries.Set(float64(len(a.state)))
	logging.Info().
		Str("room", a.roomID).
		Int("countries", len(a.state)).
		Uint64("version", a.version).
		Msg("Leaderboard loaded")
	return nil
}

// commit persists the next state and makes it current. It must be called
// with a.mu held.
func (a *Aggregator) commit(ctx context.Context, state models.GlobalAggregate, meta *models.LeaderboardMetadata) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	rec := &storage.Record{State: state, Metadata: meta, Version: a.version + 1}
	if err := a.store.Save(ctx, a.key, rec); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			// Another writer got there first; reload before the next mutation.
			a.loaded.Store(false)
		}
		return fmt.Errorf("save room %s: %w", a.roomID, err)
	}

	a.state = state
	a.meta = meta
	a.version = rec.Version
	metrics.LeaderboardCountries.Set(float64(len(state)))
	return nil
}

func (a *Aggregator) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func (a *Aggregator) broadcast(u update) {
	if a.broadcaster == nil {
		return
	}
	data, err := json.Marshal(models.NewUpdateMessage(u.state, u.meta))
	if err != nil {
		logging.Error().Err(err).Str("room", a.roomID).Msg("Failed to encode leaderboard update")
		return
	}
	a.broadcaster.Broadcast(data)
}
