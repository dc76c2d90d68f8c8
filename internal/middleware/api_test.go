// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// decodeAPIError parses an error body from rr.
func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusBadRequest, CodeValidation, "Invalid input", map[string]string{"title": "required"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := decodeAPIError(t, rr)
	if body.Error != CodeValidation || body.Message != "Invalid input" {
		t.Errorf("body = %+v", body)
	}
	if body.Details["title"] != "required" {
		t.Errorf("details = %v", body.Details)
	}
}

func TestWriteAPIErrorOmitsEmptyFields(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusNotFound, CodeNotFound, "Post not found", nil)

	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["details"]; ok {
		t.Error("details should be omitted when empty")
	}
	if _, ok := raw["postCount"]; ok {
		t.Error("postCount should be omitted when nil")
	}
}

func TestWriteAPIErrorBodyPostCount(t *testing.T) {
	rr := httptest.NewRecorder()
	n := int64(3)
	WriteAPIErrorBody(rr, http.StatusBadRequest, APIError{Error: "CATEGORY_HAS_POSTS", Message: "m", PostCount: &n})

	body := decodeAPIError(t, rr)
	if body.PostCount == nil || *body.PostCount != 3 {
		t.Errorf("postCount = %v, want 3", body.PostCount)
	}
}

func TestRouterFallbacks(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound || decodeAPIError(t, rr).Error != CodeNotFound {
		t.Errorf("NotFound wrote %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	MethodNotAllowed(rr, httptest.NewRequest(http.MethodTrace, "/cms/posts", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed wrote %d", rr.Code)
	}
}
