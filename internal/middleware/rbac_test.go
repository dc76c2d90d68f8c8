// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ocms-api/internal/auth"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/rbac"
)

func TestRequirePermission(t *testing.T) {
	enforcer := rbac.NewStaticEnforcer(rbac.DefaultPolicy(), "")

	tests := []struct {
		name       string
		role       string
		noClaims   bool
		perms      []string
		wantStatus int
	}{
		{"admin deletes posts", "admin", false, []string{model.PermissionPostsDelete}, http.StatusOK},
		{"editor cannot delete posts", "editor", false, []string{model.PermissionPostsDelete}, http.StatusForbidden},
		{"author creates posts", "author", false, []string{model.PermissionPostsCreate}, http.StatusOK},
		{"author cannot publish", "author", false, []string{model.PermissionPostsPublish}, http.StatusForbidden},
		{"missing role defaults to author", "", false, []string{model.PermissionMediaUpload}, http.StatusOK},
		{"unknown role has nothing", "guest", false, []string{model.PermissionPostsCreate}, http.StatusForbidden},
		{"any of semantics", "author", false, []string{model.PermissionPostsDelete, model.PermissionPostsEdit}, http.StatusOK},
		{"no claims", "", true, []string{model.PermissionPostsCreate}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequirePermission(enforcer, tt.perms...)(simpleOKHandler)
			req := httptest.NewRequest(http.MethodPost, "/cms/posts", nil)
			if !tt.noClaims {
				req = req.WithContext(auth.WithClaims(req.Context(), auth.Claims{Subject: "u", Role: tt.role}))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if rr.Code == http.StatusForbidden {
				body := decodeAPIError(t, rr)
				if body.Message != "You do not have permission to perform this action" {
					t.Errorf("message = %q", body.Message)
				}
			}
		})
	}
}
