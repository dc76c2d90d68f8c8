// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/ocms-api/internal/cache"
)

// readinessTimeout bounds the database ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// check is the result of one readiness check.
type check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type readinessResponse struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Checks    map[string]check `json:"checks"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": h.now()})
}

// Liveness handles GET /health/live.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. It fails with 503 when the database
// does not answer a ping.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r.Context())
	resp := readinessResponse{
		Status:    "ready",
		Timestamp: h.now(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Checks:    map[string]check{"database": db},
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		resp.Cache = &stats
	}

	status := http.StatusOK
	if db.Status != "healthy" {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *Handler) checkDatabase(ctx context.Context) check {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	start := time.Now()
	err := h.store.Ping(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return check{Status: "unhealthy", Message: "database unreachable", Latency: latency}
	}
	return check{Status: "healthy", Message: "Connected", Latency: latency}
}
