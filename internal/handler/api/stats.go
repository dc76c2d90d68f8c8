// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-api/internal/store"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// Stats handles GET /cms/stats. Callers who cannot read all content get
// counts of their own content only.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	_, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	c := h.caller(r)
	scope := store.StatsScope{EntityType: entityType}
	if !c.readAll {
		scope.AuthorID = c.claims.Subject
	}
	stats, err := h.stats.Get(r.Context(), scope)
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RecentActivity handles GET /cms/stats/activity.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, "activity", validationError("Invalid query parameters",
				map[string]string{"limit": "must be a positive integer"}))
			return
		}
		limit = min(n, maxActivityLimit)
	}

	c := h.caller(r)
	userID := ""
	if !c.readAll {
		userID = c.claims.Subject
	}
	rows, err := h.store.ListRecentActivity(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[activityResponse]{Items: mapItems(rows, toActivityResponse)})
}

// EntityActivity handles GET /cms/activity/{entityType}/{entityId}.
func (h *Handler) EntityActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListEntityActivity(r.Context(), urlParam(r, "entityType"), urlParam(r, "entityId"))
	if err != nil {
		writeError(w, r, "activity", err)
		return
	}
	if c := h.caller(r); !c.readAll {
		sub := c.claims.Subject
		own := rows[:0]
		for _, a := range rows {
			if a.UserID == sub {
				own = append(own, a)
			}
		}
		rows = own
	}
	writeJSON(w, http.StatusOK, listResponse[activityResponse]{Items: mapItems(rows, toActivityResponse)})
}
