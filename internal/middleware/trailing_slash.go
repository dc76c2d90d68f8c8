// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StripTrailingSlash routes "/cms/posts/" as "/cms/posts". Safe methods get a
// 301 to the canonical URL; other methods are rewritten in place so request
// bodies are not lost to a redirect.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" || !strings.HasSuffix(path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		newPath := strings.TrimRight(path, "/")
		if newPath == "" {
			newPath = "/"
		}

		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			newURL := newPath
			if r.URL.RawQuery != "" {
				newURL += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, newURL, http.StatusMovedPermanently)
			return
		}

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.RoutePath = newPath
		}
		r.URL.Path = newPath
		next.ServeHTTP(w, r)
	})
}
