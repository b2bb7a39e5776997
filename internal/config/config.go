// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	Storage     StorageConfig     `koanf:"storage"`
	GeoIP       GeoIPConfig       `koanf:"geoip"`
	Security    SecurityConfig    `koanf:"security"`
	Events      EventsConfig      `koanf:"events"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
	MetricsEnabled  bool          `koanf:"metrics_enabled"`
}

// LeaderboardConfig holds settings of the global leaderboard room.
type LeaderboardConfig struct {
	// RoomID is the room identifier that selects leaderboard semantics.
	RoomID string `koanf:"room_id"`

	// BroadcastDelay is the coalescing window between a mutation and the
	// broadcast that carries it.
	BroadcastDelay time.Duration `koanf:"broadcast_delay"`

	// FallbackCountry is used when no geolocation source supplies a country.
	FallbackCountry string `koanf:"fallback_country"`

	// MaxClickBatch caps the count of a single LB_CLICK. 0 disables the cap.
	MaxClickBatch int64 `koanf:"max_click_batch"`
}

// RoomsConfig holds connection and game room settings shared by all rooms.
type RoomsConfig struct {
	MaxGameRooms    int           `koanf:"max_game_rooms"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	JanitorInterval time.Duration `koanf:"janitor_interval"`
	SendBufferSize  int           `koanf:"send_buffer_size"`
	MaxMessageSize  int64         `koanf:"max_message_size"`
	WriteWait       time.Duration `koanf:"write_wait"`
	PongWait        time.Duration `koanf:"pong_wait"`

	// MessageRate and MessageBurst bound inbound frames per connection in
	// every room. A rate of 0 disables the limit.
	MessageRate  float64 `koanf:"message_rate"`
	MessageBurst int     `koanf:"message_burst"`
}

// StorageConfig selects and configures the durable store.
type StorageConfig struct {
	Backend    string        `koanf:"backend"` // badger, dynamodb, memory
	Path       string        `koanf:"path"`
	SyncWrites bool          `koanf:"sync_writes"`
	GCRatio    float64       `koanf:"gc_ratio"`
	GCInterval time.Duration `koanf:"gc_interval"`

	// OperationTimeout bounds a single load or save.
	OperationTimeout time.Duration `koanf:"operation_timeout"`

	DynamoDB DynamoDBConfig `koanf:"dynamodb"`
}

// DynamoDBConfig configures the dynamodb backend. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type DynamoDBConfig struct {
	Table    string `koanf:"table"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// GeoIPConfig controls how a connection's location is resolved.
type GeoIPConfig struct {
	// Header lists are tried in order; the first non-empty value wins.
	CountryHeaders []string `koanf:"country_headers"`
	RegionHeaders  []string `koanf:"region_headers"`
	CityHeaders    []string `koanf:"city_headers"`

	// IPLookupEnabled queries ip-api.com when no header supplied a country.
	IPLookupEnabled    bool          `koanf:"ip_lookup_enabled"`
	IPLookupURL        string        `koanf:"ip_lookup_url"`
	IPLookupTimeout    time.Duration `koanf:"ip_lookup_timeout"`
	IPLookupsPerMinute int           `koanf:"ip_lookups_per_minute"`
	CacheSize          int           `koanf:"cache_size"`
	CacheTTL           time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds CORS, rate limiting and admin settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AdminToken enables the reset endpoint. Empty disables it.
	AdminToken string `koanf:"admin_token"`
}

// EventsConfig configures click event publishing over NATS.
type EventsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Subject  string `koanf:"subject"`
	Embedded bool   `koanf:"embedded"`
	StoreDir string `koanf:"store_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
