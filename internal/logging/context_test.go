// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("len(GenerateCorrelationID()) = %d, want 8", len(id))
	}
	if id == GenerateCorrelationID() {
		t.Error("GenerateCorrelationID() returned the same id twice")
	}
}

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	if _, err := uuid.Parse(GenerateRequestID()); err != nil {
		t.Errorf("GenerateRequestID() is not a UUID: %v", err)
	}
}

func TestContextIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("CorrelationIDFromContext(empty) = %q, want empty", got)
	}
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")

	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("CorrelationIDFromContext() = %q, want %q", got, "abc12345")
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-1")
	}

	if got := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background())); len(got) != 8 {
		t.Errorf("ContextWithNewCorrelationID() id = %q, want 8 chars", got)
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "conn0001")
	ctx = ContextWithRequestID(ctx, "req-42")

	Ctx(ctx).Info().Msg("client connected")

	output := buf.String()
	for _, want := range []string{`"correlation_id":"conn0001"`, `"request_id":"req-42"`, "client connected"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestCtxWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-7")

	logger := CtxWith(ctx).Str("room", "lobby").Logger()
	logger.Warn().Msg("dropped")

	output := buf.String()
	if !strings.Contains(output, `"room":"lobby"`) || !strings.Contains(output, `"request_id":"req-7"`) {
		t.Errorf("output missing fields: %s", output)
	}
	if strings.Contains(output, "correlation_id") {
		t.Errorf("output has correlation_id without one in context: %s", output)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	logger := WithComponent("geo")
	logger.Info().Msg("lookup")

	if !strings.Contains(buf.String(), `"component":"geo"`) {
		t.Errorf("output missing component: %s", buf.String())
	}
}
