// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173", " https://admin.assurur.com/ "})(simpleOKHandler)

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed bool
	}{
		{"allowed simple request", http.MethodGet, "http://localhost:5173", false, http.StatusOK, true},
		{"normalized origin", http.MethodGet, "https://admin.assurur.com", false, http.StatusOK, true},
		{"foreign origin", http.MethodGet, "https://evil.example", false, http.StatusOK, false},
		{"no origin", http.MethodGet, "", false, http.StatusOK, false},
		{"allowed preflight", http.MethodOptions, "http://localhost:5173", true, http.StatusNoContent, true},
		{"foreign preflight", http.MethodOptions, "https://evil.example", true, http.StatusNoContent, false},
		{"plain options", http.MethodOptions, "http://localhost:5173", false, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/cms/posts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			got := rr.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllowed && got != tt.origin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.origin)
			}
			if !tt.wantAllowed && got != "" {
				t.Errorf("Allow-Origin = %q, want empty", got)
			}
			if tt.wantAllowed && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials should be allowed")
			}
			if tt.preflight && tt.wantAllowed && rr.Header().Get("Access-Control-Allow-Headers") == "" {
				t.Error("preflight should list allowed headers")
			}
		})
	}
}
