// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/ocms-api/internal/rbac"
)

// PolicySource supplies the active RBAC policy.
type PolicySource interface {
	Policy() *rbac.Policy
}

// RequirePermission allows the request when the caller's role holds any of
// perms. It must run after Authenticate.
func RequirePermission(src PolicySource, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Missing or invalid authorization header", nil)
				return
			}

			if !src.Policy().HasAny(claims.Role, perms...) {
				slog.InfoContext(r.Context(), "permission denied",
					"role", claims.Role, "required", perms, "path", r.URL.Path)
				WriteAPIError(w, http.StatusForbidden, CodeForbidden, "You do not have permission to perform this action", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
