// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestLimiterCacheGet(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	a := lc.get("a")
	if lc.get("a") != a {
		t.Error("get should return the same limiter for the same key")
	}
	if lc.get("b") == a {
		t.Error("different keys need different limiters")
	}
}

func TestLimiterCacheConcurrentGet(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lc.get("shared")
		}()
	}
	wg.Wait()

	if n := lc.size(); n != 1 {
		t.Errorf("size = %d, want 1", n)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := range 5 {
		lc.get(i)
	}
	if lc.clearIfExceeds(10) {
		t.Error("should not clear below the limit")
	}
	if !lc.clearIfExceeds(3) {
		t.Error("should clear above the limit")
	}
	if lc.size() != 0 {
		t.Errorf("size after clear = %d", lc.size())
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware()(simpleOKHandler)

	do := func(method, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/cms/posts", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 2 {
		if rr := do(http.MethodGet, "10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rr.Code)
		}
	}

	rr := do(http.MethodGet, "10.0.0.1:5678")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if body := decodeAPIError(t, rr); body.Error != CodeRateLimited {
		t.Errorf("error code = %q", body.Error)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	if rr := do(http.MethodGet, "10.0.0.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rr.Code)
	}
	if rr := do(http.MethodOptions, "10.0.0.1:1234"); rr.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rr.Code)
	}
}
