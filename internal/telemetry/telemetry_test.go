// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Version: "v0.0.0-test"}, slog.Default())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sampled bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := trace.SpanContextFromContext(r.Context())
		sampled = sc.IsValid() && sc.IsSampled()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cms/posts", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if !sampled {
		t.Error("request context should carry a sampled span")
	}
}

func TestInstrumentClient(t *testing.T) {
	c := InstrumentClient(nil)
	if c.Transport == nil {
		t.Fatal("Transport should be wrapped")
	}
	if c.Timeout == 0 {
		t.Error("default client should have a timeout")
	}

	existing := &http.Client{}
	if got := InstrumentClient(existing); got != existing {
		t.Error("InstrumentClient should modify the client in place")
	}
}
