// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

// Package logging provides zerolog-based structured logging for Ritualboard.
//
// A single global logger is configured once at startup from the logging
// section of the configuration and is used through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("room", id).Msg("Room started")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Persist failed")
//
// # Context
//
// HTTP middleware stores a request ID in the request context. Ctx and CtxWith
// attach it (and the correlation ID, when present) to every event.
//
// # Client addresses
//
// Raw client IP addresses are never written to logs. Use Fingerprint to log a
// short, stable BLAKE2b digest instead.
//
// # slog
//
// SlogHandler adapts the global logger to log/slog so that the supervisor tree
// (through sutureslog) reports service restarts and failures in the same
// format as the rest of the process.
package logging
