// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// setGlobalLevel sets the zerolog global level for the duration of the test.
// Callers must not be parallel.
func setGlobalLevel(t *testing.T, level zerolog.Level) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestSlogHandler_Enabled(t *testing.T) {
	tests := []struct {
		name         string
		globalLevel  zerolog.Level
		zerologLevel zerolog.Level
		slogLevel    slog.Level
		want         bool
	}{
		{"debug logger enables debug", zerolog.TraceLevel, zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.TraceLevel, zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger enables warn", zerolog.TraceLevel, zerolog.InfoLevel, slog.LevelWarn, true},
		{"warn logger disables info", zerolog.TraceLevel, zerolog.WarnLevel, slog.LevelInfo, false},
		{"error logger enables error", zerolog.TraceLevel, zerolog.ErrorLevel, slog.LevelError, true},
		{"global info disables debug", zerolog.InfoLevel, zerolog.DebugLevel, slog.LevelDebug, false},
		{"global info enables info", zerolog.InfoLevel, zerolog.DebugLevel, slog.LevelInfo, true},
		{"logger level stricter than global", zerolog.DebugLevel, zerolog.WarnLevel, slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setGlobalLevel(t, tt.globalLevel)
			handler := NewSlogHandlerWithLogger(zerolog.New(nil).Level(tt.zerologLevel))
			if got := handler.Enabled(context.Background(), tt.slogLevel); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	setGlobalLevel(t, zerolog.TraceLevel)

	tests := []struct {
		name      string
		level     slog.Level
		wantLevel string
	}{
		{"debug", slog.LevelDebug, `"level":"debug"`},
		{"info", slog.LevelInfo, `"level":"info"`},
		{"warn", slog.LevelWarn, `"level":"warn"`},
		{"error", slog.LevelError, `"level":"error"`},
		{"unknown defaults to info", slog.Level(100), `"level":"info"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

			record := slog.NewRecord(time.Now(), tt.level, "service restarted", 0)
			record.AddAttrs(slog.String("service", "room-registry"), slog.Int("attempt", 2))
			if err := handler.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			output := buf.String()
			for _, want := range []string{tt.wantLevel, `"service":"room-registry"`, `"attempt":2`, "service restarted"} {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %s: %s", want, output)
				}
			}
		})
	}
}

func TestSlogHandler_GlobalLevelDropsDebug(t *testing.T) {
	setGlobalLevel(t, zerolog.InfoLevel)

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)))

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug reported enabled under a global info level")
	}
	logger.Debug("backoff", "service", "room-registry")
	if buf.Len() != 0 {
		t.Errorf("debug record written under a global info level: %s", buf.String())
	}

	logger.Info("started")
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Errorf("info record missing: %s", buf.String())
	}
}

func TestSlogHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewSlogHandlerWithLogger(zerolog.New(&buf))
	child := base.WithAttrs([]slog.Attr{slog.String("tree", "ritualboard")})

	slog.New(child).Info("started")

	if !strings.Contains(buf.String(), `"tree":"ritualboard"`) {
		t.Errorf("output missing preconfigured attr: %s", buf.String())
	}
	if len(base.attrs) != 0 {
		t.Error("WithAttrs() modified the receiver")
	}
}

func TestSlogHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))

	if handler.WithGroup("") != handler {
		t.Error("WithGroup(\"\") should return the receiver")
	}

	slog.New(handler.WithGroup("outer").WithGroup("inner")).Info("grouped", "key", "value")

	if !strings.Contains(buf.String(), `"outer.inner.key":"value"`) {
		t.Errorf("grouped key not prefixed in order: %s", buf.String())
	}
}

func TestAddAttr_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr slog.Attr
		want string
	}{
		{slog.String("s", "v"), `"s":"v"`},
		{slog.Int64("i", 42), `"i":42`},
		{slog.Uint64("u", 7), `"u":7`},
		{slog.Bool("b", true), `"b":true`},
		{slog.Duration("d", time.Second), `"d":1000`},
		{slog.Any("a", []int{1, 2}), `"a":[1,2]`},
		{slog.Group("g", slog.String("k", "v")), `"g.k":"v"`},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		addAttr(logger.Info(), tt.attr, nil).Msg("")
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("addAttr(%s) output = %s, want %s", tt.attr.Key, buf.String(), tt.want)
		}
	}
}
