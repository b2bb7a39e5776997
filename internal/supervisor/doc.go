// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package supervisor provides process supervision for the leaderboard server
using suture v4.

# Overview

Services are grouped into three child supervisors so that a restart loop in
one group does not stop the others:

	RootSupervisor ("ritualboard")
	├── DataSupervisor ("data-layer")
	│   └── StorageGCService (badger backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── room.Registry (idle room janitor, closes rooms on shutdown)
	│   └── events.Publisher (if EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, failure, backoff) are logged through sutureslog,
which writes to the zerolog logger via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddMessagingService(registry)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	for err := range tree.ServeBackground(ctx) {
	    ...
	}

# Shutdown

Cancelling the context stops every service. Each gets ShutdownTimeout to
return; stragglers are listed by UnstoppedServiceReport.
*/
package supervisor
