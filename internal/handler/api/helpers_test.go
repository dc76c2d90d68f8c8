// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-api/internal/auth"
	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/middleware"
	"github.com/olegiv/ocms-api/internal/rbac"
	"github.com/olegiv/ocms-api/internal/storage"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/testutil"
)

// Tokens understood by fakeVerifier.
const (
	tokenAuthorA = "token-author-a"
	tokenAuthorB = "token-author-b"
	tokenEditor  = "token-editor"
	tokenAdmin   = "token-admin"
)

var testUsers = map[string]auth.Claims{
	tokenAuthorA: {Subject: "user-a", Email: "a@example.com", Name: "Author A", Role: "author"},
	tokenAuthorB: {Subject: "user-b", Email: "b@example.com", Name: "Author B", Role: "author"},
	tokenEditor:  {Subject: "user-e", Email: "e@example.com", Name: "Editor", Role: "editor"},
	tokenAdmin:   {Subject: "user-admin", Email: "admin@example.com", Name: "Admin", Role: "admin"},
}

type fakeVerifier map[string]auth.Claims

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return auth.Claims{}, errors.New("unknown token")
	}
	return c, nil
}

type testEnv struct {
	store   *store.Store
	handler *Handler
	router  http.Handler
	uploads string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := testutil.TestStore(t)
	uploads := t.TempDir()
	st, err := storage.NewLocal(uploads, "http://localhost:3000/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	c := cache.NewMemoryCache(cache.MemoryOptions{DefaultTTL: time.Minute, MaxEntries: 100})
	t.Cleanup(func() { _ = c.Close() })

	h := NewHandler(Config{
		Store:    s,
		Policy:   rbac.NewStaticEnforcer(rbac.DefaultPolicy(), ""),
		Storage:  st,
		Cache:    c,
		CacheTTL: time.Minute,
	})

	r := chi.NewRouter()
	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)
	h.HealthRoutes(r)
	r.Mount("/cms", h.Routes(fakeVerifier(testUsers)))

	return &testEnv{store: s, handler: h, router: r, uploads: uploads}
}

// do sends a request through the router. body is JSON encoded unless it is
// already an io.Reader.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the response body into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d: %s", expected, w.Code, w.Body.String())
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) middleware.APIError {
	t.Helper()
	resp := decode[middleware.APIError](t, w)
	if resp.Error != expectedCode {
		t.Errorf("expected code %q, got %q (%s)", expectedCode, resp.Error, resp.Message)
	}
	return resp
}

func longContent(topic string) string {
	return "<p>" + topic + " " + strings.Repeat("lorem ipsum dolor sit amet ", 3) + "</p>"
}

func postBody(title, slug string) map[string]any {
	return map[string]any{
		"title":   title,
		"slug":    slug,
		"content": longContent(title),
	}
}

// createPost creates a post and returns its response.
func (e *testEnv) createPost(t *testing.T, token string, body map[string]any) postResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/cms/posts", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d: %s", w.Code, w.Body.String())
	}
	return decode[postResponse](t, w)
}

func (e *testEnv) activityCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.CountActivities(context.Background())
	if err != nil {
		t.Fatalf("CountActivities: %v", err)
	}
	return n
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}
