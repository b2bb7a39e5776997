// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/ritualboard/internal/logging"
	"github.com/tomtom215/ritualboard/internal/validation"
)

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

var validStorageBackends = map[string]bool{
	"badger":   true,
	"dynamodb": true,
	"memory":   true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration is complete and consistent.
// Fields are normalized in place where a canonical form exists.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLeaderboard,
		c.validateRooms,
		c.validateStorage,
		c.validateGeoIP,
		c.validateSecurity,
		c.validateEvents,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateLeaderboard() error {
	lb := &c.Leaderboard
	if !validation.ValidRoomID(lb.RoomID) {
		return fmt.Errorf("LEADERBOARD_ROOM_ID %q is not a valid room id", lb.RoomID)
	}
	if lb.BroadcastDelay < 10*time.Millisecond || lb.BroadcastDelay > time.Minute {
		return fmt.Errorf("BROADCAST_DELAY must be between 10ms and 1m, got %s", lb.BroadcastDelay)
	}

	lb.FallbackCountry = strings.ToUpper(strings.TrimSpace(lb.FallbackCountry))
	if !validation.ValidCountryCode(lb.FallbackCountry) {
		return fmt.Errorf("FALLBACK_COUNTRY must be a two-letter country code, got %q", lb.FallbackCountry)
	}

	if lb.MaxClickBatch < 0 {
		return fmt.Errorf("MAX_CLICK_BATCH must not be negative")
	}
	return nil
}

func (c *Config) validateRooms() error {
	r := c.Rooms
	if r.MaxGameRooms < 0 {
		return fmt.Errorf("MAX_GAME_ROOMS must not be negative")
	}
	if r.IdleTimeout <= 0 || r.JanitorInterval <= 0 {
		return fmt.Errorf("ROOM_IDLE_TIMEOUT and ROOM_JANITOR_INTERVAL must be positive")
	}
	if r.SendBufferSize < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be at least 1")
	}
	if r.MaxMessageSize < 64 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be at least 64 bytes")
	}
	if r.WriteWait <= 0 || r.PongWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT and WS_PONG_WAIT must be positive")
	}
	if r.MessageRate < 0 {
		return fmt.Errorf("WS_MESSAGE_RATE must not be negative")
	}
	if r.MessageRate > 0 && r.MessageBurst < 1 {
		return fmt.Errorf("WS_MESSAGE_BURST must be at least 1 when WS_MESSAGE_RATE is set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if !validStorageBackends[s.Backend] {
		return fmt.Errorf("STORAGE_BACKEND must be one of: badger, dynamodb, memory")
	}

	switch s.Backend {
	case "badger":
		if s.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required when STORAGE_BACKEND=badger")
		}
		if s.GCRatio <= 0 || s.GCRatio >= 1 {
			return fmt.Errorf("STORAGE_GC_RATIO must be between 0 and 1 exclusive")
		}
		if s.GCInterval <= 0 {
			return fmt.Errorf("STORAGE_GC_INTERVAL must be positive")
		}
	case "dynamodb":
		if s.DynamoDB.Table == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required when STORAGE_BACKEND=dynamodb")
		}
		if s.DynamoDB.Endpoint != "" {
			if _, err := url.ParseRequestURI(s.DynamoDB.Endpoint); err != nil {
				return fmt.Errorf("DYNAMODB_ENDPOINT is not a valid URL: %w", err)
			}
		}
	case "memory":
		if c.Server.IsProduction() {
			logging.Warn().Msg("STORAGE_BACKEND=memory in production; leaderboard state is lost on restart")
		}
	}

	if s.OperationTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateGeoIP() error {
	g := c.GeoIP
	if !g.IPLookupEnabled {
		return nil
	}
	if _, err := url.ParseRequestURI(g.IPLookupURL); err != nil {
		return fmt.Errorf("GEOIP_IP_LOOKUP_URL is not a valid URL: %w", err)
	}
	if g.IPLookupTimeout <= 0 {
		return fmt.Errorf("GEOIP_IP_LOOKUP_TIMEOUT must be positive")
	}
	if g.IPLookupsPerMinute < 1 {
		return fmt.Errorf("GEOIP_LOOKUPS_PER_MIN must be at least 1")
	}
	if g.CacheSize < 1 || g.CacheTTL <= 0 {
		return fmt.Errorf("GEOIP_CACHE_SIZE and GEOIP_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if len(s.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin (use * to allow all)")
	}
	for _, origin := range s.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS entry %q must be * or an origin like https://example.com", origin)
		}
	}

	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 || s.RateLimitReqs > 100000 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
		}
		if s.RateLimitWindow < time.Second || s.RateLimitWindow > time.Hour {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
		}
	}

	if s.AdminToken != "" && len(s.AdminToken) < 16 {
		return fmt.Errorf("ADMIN_TOKEN must be at least 16 characters")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	if !e.Enabled {
		return nil
	}
	if e.Subject == "" || strings.ContainsAny(e.Subject, " \t*>") {
		return fmt.Errorf("NATS_SUBJECT must be a literal subject without spaces or wildcards")
	}
	if !e.Embedded && e.URL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_ENABLED=true and NATS_EMBEDDED=false")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
