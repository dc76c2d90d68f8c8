// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ocms-api/internal/auth"
)

type fakeVerifier map[string]auth.Claims

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return auth.Claims{}, errors.New("bad token")
	}
	return c, nil
}

func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{"good": {Subject: "u1", Role: "author"}}

	var got auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(verifier)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing or invalid authorization header"},
		{"basic scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, "Missing or invalid authorization header"},
		{"empty bearer", "Bearer  ", http.StatusUnauthorized, "Missing or invalid authorization header"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid token", "Bearer good", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = auth.Claims{}
			req := httptest.NewRequest(http.MethodGet, "/cms/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				body := decodeAPIError(t, rr)
				if body.Error != CodeUnauthorized || body.Message != tt.wantMsg {
					t.Errorf("body = %+v", body)
				}
				return
			}
			if got.Subject != "u1" || got.Role != "author" {
				t.Errorf("claims in context = %+v", got)
			}
		})
	}
}
