// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-api/internal/auth"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	return m
}

func TestContextHandlerAddsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", true)

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	ctx = auth.WithClaims(ctx, auth.Claims{Subject: "user-7"})
	logger.InfoContext(ctx, "post created", "post_id", "p1")

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", m["request_id"])
	}
	if m["user_id"] != "user-7" {
		t.Errorf("user_id = %v, want user-7", m["user_id"])
	}
	if m["post_id"] != "p1" {
		t.Errorf("post_id = %v, want p1", m["post_id"])
	}
}

func TestContextHandlerWithoutRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", true)

	logger.Info("startup")

	m := decodeLine(t, &buf)
	if _, ok := m["request_id"]; ok {
		t.Error("request_id should be absent outside a request")
	}
	if _, ok := m["user_id"]; ok {
		t.Error("user_id should be absent without claims")
	}
}

func TestContextHandlerKeepsGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", false).With("component", "store").WithGroup("db")

	logger.Debug("query", "table", "posts")

	line := buf.String()
	for _, want := range []string{"component=store", "db.table=posts", "level=DEBUG"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", false)

	logger.Info("ignored")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn should be logged, got %q", buf.String())
	}
}
