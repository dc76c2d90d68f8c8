// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-api/internal/middleware"
)

func TestDraftVisibilityAcrossAuthors(t *testing.T) {
	env := newTestEnv(t)

	post := env.createPost(t, tokenAuthorA, postBody("Hello World", "hello-world"))
	require.Equal(t, "draft", post.Status)
	require.Nil(t, post.PublishedAt)

	listFor := func(token, query string) listResponse[postResponse] {
		w := env.do(t, http.MethodGet, "/cms/posts"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[listResponse[postResponse]](t, w)
	}

	assert.Empty(t, listFor(tokenAuthorB, "").Items, "author B must not see A's draft")
	assert.Empty(t, listFor(tokenAuthorB, "?status=draft").Items)
	assert.Len(t, listFor(tokenAuthorA, "?status=draft").Items, 1)
	assert.Len(t, listFor(tokenAdmin, "").Items, 1)
	assert.Len(t, listFor(tokenEditor, "").Items, 1)

	w := env.do(t, http.MethodGet, "/cms/posts/"+post.ID, tokenAuthorB, nil)
	assertStatusCode(t, w, http.StatusNotFound)
	w = env.do(t, http.MethodGet, "/cms/posts/slug/hello-world", tokenAuthorB, nil)
	assertStatusCode(t, w, http.StatusNotFound)

	// Authors cannot use the publish toggle, but may publish through an update.
	w = env.do(t, http.MethodPatch, "/cms/posts/"+post.ID+"/publish", tokenAuthorA, nil)
	assertStatusCode(t, w, http.StatusForbidden)
	w = env.do(t, http.MethodPut, "/cms/posts/"+post.ID, tokenAuthorA, map[string]any{"status": "published"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[postResponse](t, w)
	assert.Equal(t, "published", updated.Status)
	assert.NotNil(t, updated.PublishedAt)

	list := listFor(tokenAuthorB, "")
	require.Len(t, list.Items, 1)
	assert.Equal(t, post.ID, list.Items[0].ID)
	assert.Empty(t, list.Items[0].Content, "listings omit content")
	require.NotNil(t, list.Items[0].Author)
	assert.Equal(t, "Author A", list.Items[0].Author.Name)
	assert.Len(t, listFor(tokenAdmin, "").Items, 1)

	w = env.do(t, http.MethodGet, "/cms/posts/slug/hello-world", tokenAuthorB, nil)
	assertStatusCode(t, w, http.StatusOK)
}

func TestCreatePostDuplicateSlugWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(t, tokenAuthorA, postBody("First post", "same-slug"))
	before := env.activityCount(t)

	w := env.do(t, http.MethodPost, "/cms/posts", tokenAuthorB, postBody("Second post", "same-slug"))
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, CodeDuplicateSlug)

	if got := env.activityCount(t); got != before {
		t.Errorf("activity rows = %d, want %d", got, before)
	}
	w = env.do(t, http.MethodGet, "/cms/posts", tokenAdmin, nil)
	if got := decode[listResponse[postResponse]](t, w).Pagination.Total; got != 1 {
		t.Errorf("total posts = %d, want 1", got)
	}
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"short title", map[string]any{"title": "Hey", "slug": "valid-slug", "content": longContent("x")}, "title"},
		{"bad slug", map[string]any{"title": "Valid title", "slug": "Not A Slug", "content": longContent("x")}, "slug"},
		{"short content", map[string]any{"title": "Valid title", "slug": "valid-slug", "content": "too short"}, "content"},
		{"bad category", map[string]any{"title": "Valid title", "slug": "valid-slug", "content": longContent("x"), "categoryId": "nope"}, "categoryId"},
		{"bad status", map[string]any{"title": "Valid title", "slug": "valid-slug", "content": longContent("x"), "status": "archived"}, "status"},
		{"bad entity type", map[string]any{"title": "Valid title", "slug": "valid-slug", "content": longContent("x"), "entityType": "university"}, "entityType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/cms/posts", tokenAuthorA, tt.body)
			assertStatusCode(t, w, http.StatusBadRequest)
			resp := assertErrorResponse(t, w, middleware.CodeValidation)
			if _, ok := resp.Details[tt.wantField]; !ok {
				t.Errorf("details = %v, want entry for %q", resp.Details, tt.wantField)
			}
		})
	}

	if n := env.activityCount(t); n != 0 {
		t.Errorf("activity rows = %d, want 0", n)
	}
}

func TestCreatePostUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	body := postBody("Orphan post", "orphan-post")
	body["categoryId"] = "7f0c4a5e-0000-4000-8000-000000000000"

	w := env.do(t, http.MethodPost, "/cms/posts", tokenAuthorA, body)
	assertStatusCode(t, w, http.StatusBadRequest)
	assertErrorResponse(t, w, middleware.CodeValidation)
}

func TestCreatePostSanitizesAndTags(t *testing.T) {
	env := newTestEnv(t)
	body := postBody("Tagged post", "tagged-post")
	body["content"] = longContent("safe") + `<script>alert("x")</script>`
	body["tags"] = []string{"Berita Sekolah", "Ékstra", "Berita Sekolah"}

	post := env.createPost(t, tokenAuthorA, body)
	assert.NotContains(t, post.Content, "<script>")
	require.Len(t, post.Tags, 2)
	assert.Equal(t, "berita-sekolah", post.Tags[0].Slug)
	assert.Equal(t, "ekstra", post.Tags[1].Slug)

	w := env.do(t, http.MethodPut, "/cms/posts/"+post.ID, tokenAuthorA, map[string]any{"tags": []string{"Ekstra"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[postResponse](t, w).Tags, 1)

	w = env.do(t, http.MethodGet, "/cms/posts/"+post.ID+"/tags", tokenAuthorA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[listResponse[tagResponse]](t, w)
	require.Len(t, tags.Items, 1)
	assert.Equal(t, "ekstra", tags.Items[0].Slug)

	w = env.do(t, http.MethodGet, "/cms/tags/search?q=berita", tokenAuthorB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[listResponse[tagResponse]](t, w).Items, 1)
}

func TestUpdatePostOwnership(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, tokenAuthorA, postBody("Owned post", "owned-post"))

	w := env.do(t, http.MethodPut, "/cms/posts/"+post.ID, tokenAuthorB, map[string]any{"title": "Hijacked title"})
	assertStatusCode(t, w, http.StatusForbidden)
	resp := assertErrorResponse(t, w, middleware.CodeForbidden)
	assert.Equal(t, "You can only edit your own posts", resp.Message)

	w = env.do(t, http.MethodPut, "/cms/posts/"+post.ID, tokenEditor, map[string]any{"title": "Edited by editor"})
	assertStatusCode(t, w, http.StatusOK)

	w = env.do(t, http.MethodPut, "/cms/posts/00000000-0000-4000-8000-000000000000", tokenAdmin, map[string]any{"title": "Nobody home"})
	assertStatusCode(t, w, http.StatusNotFound)
	assertErrorResponse(t, w, middleware.CodeNotFound)
}

func TestTogglePublishTwice(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, tokenAuthorA, postBody("Toggle me", "toggle-me"))
	path := "/cms/posts/" + post.ID + "/publish"

	w := env.do(t, http.MethodPatch, path, tokenEditor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	published := decode[postResponse](t, w)
	assert.Equal(t, "published", published.Status)
	require.NotNil(t, published.PublishedAt)

	w = env.do(t, http.MethodPatch, path, tokenEditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	draft := decode[postResponse](t, w)
	assert.Equal(t, "draft", draft.Status)
	assert.Nil(t, draft.PublishedAt)

	w = env.do(t, http.MethodGet, "/cms/activity/post/"+post.ID, tokenAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	actions := map[string]int{}
	for _, a := range decode[listResponse[activityResponse]](t, w).Items {
		actions[a.Action]++
	}
	assert.Equal(t, map[string]int{"create": 1, "publish": 1, "unpublish": 1}, actions)
}

func TestBulkPostOperations(t *testing.T) {
	env := newTestEnv(t)
	a1 := env.createPost(t, tokenAuthorA, postBody("Bulk one", "bulk-one"))
	a2 := env.createPost(t, tokenAuthorA, postBody("Bulk two", "bulk-two"))
	b1 := env.createPost(t, tokenAuthorB, postBody("Bulk three", "bulk-three"))
	missing := "00000000-0000-4000-8000-000000000000"

	w := env.do(t, http.MethodPost, "/cms/posts/bulk-status", tokenEditor,
		map[string]any{"ids": []string{a1.ID, a2.ID, missing}, "status": "published"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["updated"])

	// An empty batch is rejected.
	w = env.do(t, http.MethodPost, "/cms/posts/bulk-delete", tokenAdmin,
		map[string]any{"ids": []string{}})
	assertStatusCode(t, w, http.StatusBadRequest)

	before := env.activityCount(t)
	w = env.do(t, http.MethodPost, "/cms/posts/bulk-delete", tokenAdmin,
		map[string]any{"ids": []string{a1.ID, b1.ID, missing}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["deleted"])
	assert.Equal(t, before+2, env.activityCount(t))

	w = env.do(t, http.MethodGet, "/cms/posts", tokenAdmin, nil)
	items := decode[listResponse[postResponse]](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, a2.ID, items[0].ID)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, tokenAuthorA, postBody("Short lived", "short-lived"))

	// Authors lack posts:delete in the default policy.
	w := env.do(t, http.MethodDelete, "/cms/posts/"+post.ID, tokenAuthorA, nil)
	assertStatusCode(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodDelete, "/cms/posts/"+post.ID, tokenAdmin, nil)
	assertStatusCode(t, w, http.StatusOK)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	w = env.do(t, http.MethodDelete, "/cms/posts/"+post.ID, tokenAdmin, nil)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestListPostsPaginationAndSearch(t *testing.T) {
	env := newTestEnv(t)
	for _, slug := range []string{"alpha-post", "bravo-post", "charlie-post"} {
		body := postBody("Title "+slug, slug)
		body["status"] = "published"
		env.createPost(t, tokenAuthorA, body)
	}

	w := env.do(t, http.MethodGet, "/cms/posts?page=2&limit=2", tokenAuthorB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[listResponse[postResponse]](t, w)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, paginationResponse{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, *page.Pagination)
	assert.Len(t, page.Items, 1)

	w = env.do(t, http.MethodGet, "/cms/posts?search=BRAVO", tokenAuthorB, nil)
	assert.Len(t, decode[listResponse[postResponse]](t, w).Items, 1)

	w = env.do(t, http.MethodGet, "/cms/posts?limit=0", tokenAuthorB, nil)
	assertStatusCode(t, w, http.StatusBadRequest)
	w = env.do(t, http.MethodGet, "/cms/posts?status=archived", tokenAuthorB, nil)
	assertStatusCode(t, w, http.StatusBadRequest)
}

func TestListPostsPageOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	body := postBody("Only post", "only-post")
	body["status"] = "published"
	env.createPost(t, tokenAuthorA, body)

	// (page-1)*limit would overflow the offset.
	w := env.do(t, http.MethodGet, "/cms/posts?page=9223372036854775807&limit=10", tokenAuthorA, nil)
	assertStatusCode(t, w, http.StatusBadRequest)
	resp := assertErrorResponse(t, w, middleware.CodeValidation)
	assert.Contains(t, resp.Details, "page")

	// The last representable page is valid and empty.
	w = env.do(t, http.MethodGet, "/cms/posts?page=922337203685477581&limit=10", tokenAuthorA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[listResponse[postResponse]](t, w)
	assert.Empty(t, page.Items)
	require.NotNil(t, page.Pagination)
	assert.EqualValues(t, 1, page.Pagination.Total)
}
