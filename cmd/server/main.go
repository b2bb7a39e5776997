// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/ritualboard/internal/api"
	"github.com/tomtom215/ritualboard/internal/config"
	"github.com/tomtom215/ritualboard/internal/events"
	"github.com/tomtom215/ritualboard/internal/geo"
	"github.com/tomtom215/ritualboard/internal/leaderboard"
	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/room"
	"github.com/tomtom215/ritualboard/internal/storage"
	"github.com/tomtom215/ritualboard/internal/supervisor"
	"github.com/tomtom215/ritualboard/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("storage", cfg.Storage.Backend).
		Str("leaderboard_room", cfg.Leaderboard.RoomID).
		Str("environment", cfg.Server.Environment).
		Msg("Starting ritualboard")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	store, err := storage.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()
	logging.Info().Str("backend", store.Name()).Msg("Storage initialized")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if badgerStore, ok := storage.Unwrap(store).(*storage.BadgerStore); ok {
		tree.AddDataService(services.NewStorageGCService(badgerStore, cfg.Storage.GCInterval))
	}

	sink, err := openEvents(cfg.Events, tree)
	if err != nil {
		return err
	}

	registry, err := room.NewRegistry(room.Options{
		LeaderboardID:    cfg.Leaderboard.RoomID,
		Leaderboard:      cfg.Leaderboard,
		Rooms:            cfg.Rooms,
		Store:            store,
		OperationTimeout: cfg.Storage.OperationTimeout,
		Events:           sink,
	})
	if err != nil {
		return fmt.Errorf("create room registry: %w", err)
	}
	tree.AddMessagingService(registry)

	warmLeaderboard(registry.Leaderboard().Aggregator(), cfg.Storage.OperationTimeout)

	var provider geo.Provider
	if cfg.GeoIP.IPLookupEnabled {
		provider = geo.NewIPAPIProvider(cfg.GeoIP)
		logging.Info().Str("url", cfg.GeoIP.IPLookupURL).Msg("IP geolocation fallback enabled")
	}
	resolver := geo.NewResolver(cfg.GeoIP, cfg.Leaderboard.FallbackCountry, provider)

	handler := api.NewHandler(cfg, registry, store, resolver, version)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	var serveErr error
	for err := range tree.ServeBackground(ctx) {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
			serveErr = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	// The registry stops with the tree; Close also covers an early exit.
	registry.Close()
	return serveErr
}

// openEvents returns the click event sink. A Publisher is added to the
// messaging layer when events are enabled.
func openEvents(cfg config.EventsConfig, tree *supervisor.SupervisorTree) (leaderboard.EventSink, error) {
	if !cfg.Enabled {
		return events.Nop{}, nil
	}

	transport, err := events.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open event transport: %w", err)
	}

	publisher := events.NewPublisher(transport, events.DefaultPublisherConfig())
	tree.AddMessagingService(publisher)
	return publisher, nil
}

// warmLeaderboard loads the aggregate before the listener opens so readiness
// reflects storage state from the start. Failure is not fatal; the room
// retries on first use.
func warmLeaderboard(agg *leaderboard.Aggregator, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := agg.Load(ctx); err != nil {
		logging.Warn().Err(err).Str("room", agg.RoomID()).Msg("Failed to load leaderboard, will retry on first connection")
		return
	}
	logging.Info().Str("room", agg.RoomID()).Msg("Leaderboard loaded")
}
