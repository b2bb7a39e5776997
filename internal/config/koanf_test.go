// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 1999 {
		t.Errorf("Server.Port = %d, want 1999", cfg.Server.Port)
	}
	if cfg.Leaderboard.RoomID != LeaderboardRoomID {
		t.Errorf("Leaderboard.RoomID = %q, want %q", cfg.Leaderboard.RoomID, LeaderboardRoomID)
	}
	if cfg.Leaderboard.BroadcastDelay != time.Second {
		t.Errorf("Leaderboard.BroadcastDelay = %v, want 1s", cfg.Leaderboard.BroadcastDelay)
	}
	if cfg.Leaderboard.FallbackCountry != "US" {
		t.Errorf("Leaderboard.FallbackCountry = %q, want US", cfg.Leaderboard.FallbackCountry)
	}
	if cfg.Storage.Backend != "badger" || cfg.Storage.Path != "/data/leaderboard" {
		t.Errorf("Storage = %s at %s, want badger at /data/leaderboard", cfg.Storage.Backend, cfg.Storage.Path)
	}
	if !cfg.Storage.SyncWrites {
		t.Error("Storage.SyncWrites should default to true")
	}
	if cfg.GeoIP.IPLookupEnabled {
		t.Error("GeoIP.IPLookupEnabled should default to false")
	}
	if cfg.Events.Enabled {
		t.Error("Events.Enabled should default to false")
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"BROADCAST_DELAY", "leaderboard.broadcast_delay"},
		{"FALLBACK_COUNTRY", "leaderboard.fallback_country"},
		{"STORAGE_BACKEND", "storage.backend"},
		{"DYNAMODB_TABLE", "storage.dynamodb.table"},
		{"GEOIP_COUNTRY_HEADERS", "geoip.country_headers"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"NATS_URL", "events.url"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	t.Setenv(ConfigPathEnvVar, "")
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile("config.yaml", []byte("server: {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	custom := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("server: {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}

	t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() with missing CONFIG_PATH = %q, want config.yaml", got)
	}
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("BROADCAST_DELAY", "250ms")
	t.Setenv("FALLBACK_COUNTRY", "gb")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("CORS_ORIGINS", "https://ritual.example, https://www.ritual.example")
	t.Setenv("GEOIP_COUNTRY_HEADERS", "X-Country")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WS_MESSAGE_RATE", "5")
	t.Setenv("WS_MESSAGE_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Leaderboard.BroadcastDelay != 250*time.Millisecond {
		t.Errorf("BroadcastDelay = %v, want 250ms", cfg.Leaderboard.BroadcastDelay)
	}
	if cfg.Leaderboard.FallbackCountry != "GB" {
		t.Errorf("FallbackCountry = %q, want GB (normalized)", cfg.Leaderboard.FallbackCountry)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	wantOrigins := []string{"https://ritual.example", "https://www.ritual.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, wantOrigins) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, wantOrigins)
	}
	if !reflect.DeepEqual(cfg.GeoIP.CountryHeaders, []string{"X-Country"}) {
		t.Errorf("CountryHeaders = %v, want [X-Country]", cfg.GeoIP.CountryHeaders)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Rooms.MessageRate != 5 || cfg.Rooms.MessageBurst != 3 {
		t.Errorf("Rooms message limit = %v/%d, want 5/3", cfg.Rooms.MessageRate, cfg.Rooms.MessageBurst)
	}
}

func TestLoad_ConfigFileAndEnvPrecedence(t *testing.T) {
	content := `
server:
  port: 8888
  host: "127.0.0.1"
leaderboard:
  room_id: "world-board"
  broadcast_delay: 2s
storage:
  backend: dynamodb
  dynamodb:
    table: rooms-test
    region: eu-west-1
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from env", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1 from file", cfg.Server.Host)
	}
	if cfg.Leaderboard.RoomID != "world-board" || cfg.Leaderboard.BroadcastDelay != 2*time.Second {
		t.Errorf("Leaderboard = %+v, want world-board/2s", cfg.Leaderboard)
	}
	if cfg.Storage.DynamoDB.Table != "rooms-test" || cfg.Storage.DynamoDB.Region != "eu-west-1" {
		t.Errorf("Storage.DynamoDB = %+v", cfg.Storage.DynamoDB)
	}
	if cfg.Leaderboard.FallbackCountry != "US" {
		t.Errorf("FallbackCountry = %q, want default US", cfg.Leaderboard.FallbackCountry)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "STORAGE_BACKEND") {
		t.Errorf("Load() error = %v, want STORAGE_BACKEND message", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 1999}
	if got := s.Addr(); got != "127.0.0.1:1999" {
		t.Errorf("Addr() = %q", got)
	}
	s = ServerConfig{Host: "::1", Port: 80}
	if got := s.Addr(); got != "[::1]:80" {
		t.Errorf("Addr() = %q", got)
	}
}
