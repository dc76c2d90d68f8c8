// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
)

// tagSearchLimit caps tag autocomplete results.
const tagSearchLimit = 10

// ListTags handles GET /cms/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "tag", err)
		return
	}
	tags, total, err := h.store.ListTags(r.Context(), r.URL.Query().Get("search"), p)
	if err != nil {
		writeError(w, r, "tag", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(tags, toTagResponse), p, total))
}

// SearchTags handles GET /cms/tags/search?q=.
func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeJSON(w, http.StatusOK, listResponse[tagResponse]{Items: []tagResponse{}})
		return
	}
	tags, err := h.store.SearchTags(r.Context(), term, tagSearchLimit)
	if err != nil {
		writeError(w, r, "tag", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[tagResponse]{Items: mapItems(tags, toTagResponse)})
}
