// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("Level = %q, want %q", cfg.Level, "info")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Caller {
		t.Error("Caller = true, want false")
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	Info().Str("room", "global-leaderboard").Msg("room started")

	output := buf.String()
	for _, want := range []string{`"level":"info"`, `"room":"global-leaderboard"`, `"message":"room started"`, `"time":`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "info", Format: "console", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	Info().Msg("console line")

	if strings.Contains(buf.String(), `"message"`) {
		t.Errorf("console output should not be JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "console line") {
		t.Errorf("console output missing message: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"trace", "debug", "INFO", "warn", "error"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "verbose", "critical"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true, want false", level)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	Debug().Msg("debug hidden")
	Info().Msg("info hidden")
	Warn().Msg("warn shown")
	Err(errors.New("boom")).Msg("error shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("output contains filtered events: %s", output)
	}
	if !strings.Contains(output, "warn shown") || !strings.Contains(output, "error shown") {
		t.Errorf("output missing warn/error events: %s", output)
	}
	if !strings.Contains(output, `"error":"boom"`) {
		t.Errorf("output missing error field: %s", output)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	logger := With().Str("component", "hub").Logger()
	logger.Info().Msg("child")

	if !strings.Contains(buf.String(), `"component":"hub"`) {
		t.Errorf("child logger missing field: %s", buf.String())
	}
}
