// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ritualboard/config.yaml",
	"/etc/ritualboard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// LeaderboardRoomID is the well-known room that carries the global leaderboard.
const LeaderboardRoomID = "global-leaderboard"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            1999,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
			MetricsEnabled:  true,
		},
		Leaderboard: LeaderboardConfig{
			RoomID:          LeaderboardRoomID,
			BroadcastDelay:  time.Second,
			FallbackCountry: "US",
			MaxClickBatch:   1000,
		},
		Rooms: RoomsConfig{
			MaxGameRooms:    1000,
			IdleTimeout:     5 * time.Minute,
			JanitorInterval: time.Minute,
			SendBufferSize:  256,
			MaxMessageSize:  4096,
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			MessageRate:     20,
			MessageBurst:    40,
		},
		Storage: StorageConfig{
			Backend:          "badger",
			Path:             "/data/leaderboard",
			SyncWrites:       true,
			GCRatio:          0.5,
			GCInterval:       10 * time.Minute,
			OperationTimeout: 5 * time.Second,
			DynamoDB: DynamoDBConfig{
				Table: "ritualboard-rooms",
			},
		},
		GeoIP: GeoIPConfig{
			CountryHeaders:     []string{"CF-IPCountry", "X-Vercel-IP-Country", "CloudFront-Viewer-Country"},
			RegionHeaders:      []string{"CF-Region-Code", "X-Vercel-IP-Country-Region", "CloudFront-Viewer-Country-Region"},
			CityHeaders:        []string{"CF-IPCity", "X-Vercel-IP-City", "CloudFront-Viewer-City"},
			IPLookupEnabled:    false,
			IPLookupURL:        "http://ip-api.com/json",
			IPLookupTimeout:    2 * time.Second,
			IPLookupsPerMinute: 45,
			CacheSize:          10000,
			CacheTTL:           time.Hour,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     120,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			AdminToken:        "",
		},
		Events: EventsConfig{
			Enabled:  false,
			URL:      "nats://127.0.0.1:4222",
			Subject:  "ritualboard.clicks",
			Embedded: false,
			StoreDir: "/data/nats",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from three layers, later layers winning:
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"geoip.country_headers",
	"geoip.region_headers",
	"geoip.city_headers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",
	"metrics_enabled":  "server.metrics_enabled",

	// Leaderboard
	"leaderboard_room_id": "leaderboard.room_id",
	"broadcast_delay":     "leaderboard.broadcast_delay",
	"fallback_country":    "leaderboard.fallback_country",
	"max_click_batch":     "leaderboard.max_click_batch",

	// Rooms
	"max_game_rooms":        "rooms.max_game_rooms",
	"room_idle_timeout":     "rooms.idle_timeout",
	"room_janitor_interval": "rooms.janitor_interval",
	"ws_send_buffer":        "rooms.send_buffer_size",
	"ws_max_message_size":   "rooms.max_message_size",
	"ws_write_wait":         "rooms.write_wait",
	"ws_pong_wait":          "rooms.pong_wait",
	"ws_message_rate":       "rooms.message_rate",
	"ws_message_burst":      "rooms.message_burst",

	// Storage
	"storage_backend":     "storage.backend",
	"storage_path":        "storage.path",
	"storage_sync_writes": "storage.sync_writes",
	"storage_gc_ratio":    "storage.gc_ratio",
	"storage_gc_interval": "storage.gc_interval",
	"storage_timeout":     "storage.operation_timeout",
	"dynamodb_table":      "storage.dynamodb.table",
	"dynamodb_region":     "storage.dynamodb.region",
	"dynamodb_endpoint":   "storage.dynamodb.endpoint",

	// GeoIP
	"geoip_country_headers":   "geoip.country_headers",
	"geoip_region_headers":    "geoip.region_headers",
	"geoip_city_headers":      "geoip.city_headers",
	"geoip_ip_lookup":         "geoip.ip_lookup_enabled",
	"geoip_ip_lookup_url":     "geoip.ip_lookup_url",
	"geoip_ip_lookup_timeout": "geoip.ip_lookup_timeout",
	"geoip_lookups_per_min":   "geoip.ip_lookups_per_minute",
	"geoip_cache_size":        "geoip.cache_size",
	"geoip_cache_ttl":         "geoip.cache_ttl",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"admin_token":         "security.admin_token",

	// Events
	"events_enabled": "events.enabled",
	"nats_url":       "events.url",
	"nats_subject":   "events.subject",
	"nats_embedded":  "events.embedded",
	"nats_store_dir": "events.store_dir",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its config path, or
// "" to skip it.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BROADCAST_DELAY -> leaderboard.broadcast_delay
//   - DYNAMODB_TABLE -> storage.dynamodb.table
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
