// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createCategory(t *testing.T, name, slug string) categoryResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/cms/categories", tokenAdmin, map[string]any{"name": name, "slug": slug})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: status %d: %s", w.Code, w.Body.String())
	}
	return decode[categoryResponse](t, w)
}

func TestDeleteCategoryWithPosts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory(t, "Berita", "berita")
	for _, slug := range []string{"post-one", "post-two"} {
		body := postBody("Post "+slug, slug)
		body["categoryId"] = cat.ID
		env.createPost(t, tokenAuthorA, body)
	}
	before := env.activityCount(t)

	w := env.do(t, http.MethodDelete, "/cms/categories/"+cat.ID, tokenAdmin, nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	resp := assertErrorResponse(t, w, CodeCategoryHasPosts)
	require.NotNil(t, resp.PostCount)
	assert.EqualValues(t, 2, *resp.PostCount)
	assert.Equal(t, before, env.activityCount(t))

	empty := env.createCategory(t, "Kosong", "kosong")
	w = env.do(t, http.MethodDelete, "/cms/categories/"+empty.ID, tokenAdmin, nil)
	assertStatusCode(t, w, http.StatusOK)
	w = env.do(t, http.MethodGet, "/cms/categories/"+empty.ID, tokenAdmin, nil)
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestCategoryDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.createCategory(t, "Prestasi", "prestasi")

	w := env.do(t, http.MethodPost, "/cms/categories", tokenAdmin, map[string]any{"name": "Lain", "slug": "prestasi"})
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, CodeDuplicateSlug)

	w = env.do(t, http.MethodPost, "/cms/categories", tokenAdmin, map[string]any{"name": "Prestasi", "slug": "prestasi-2"})
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, CodeDuplicateName)
}

func TestCategoryPermissions(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/cms/categories", tokenAuthorA, map[string]any{"name": "Agenda", "slug": "agenda"})
	assertStatusCode(t, w, http.StatusForbidden)
	w = env.do(t, http.MethodPost, "/cms/categories", tokenEditor, map[string]any{"name": "Agenda", "slug": "agenda"})
	assertStatusCode(t, w, http.StatusForbidden)
}

func TestAllCategoriesCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	env.createCategory(t, "Zeta", "zeta")

	w := env.do(t, http.MethodGet, "/cms/categories/all", tokenAuthorA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[listResponse[categoryResponse]](t, w)
	require.Len(t, first.Items, 1)
	assert.Nil(t, first.Pagination)

	env.createCategory(t, "Alpha", "alpha")
	w = env.do(t, http.MethodGet, "/cms/categories/all", tokenAuthorA, nil)
	items := decode[listResponse[categoryResponse]](t, w).Items
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name, "ordered by name")
}

func TestCategoryPostsAndCounts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory(t, "Kegiatan", "kegiatan")
	body := postBody("Camping trip", "camping-trip")
	body["categoryId"] = cat.ID
	body["status"] = "published"
	env.createPost(t, tokenAuthorA, body)
	env.createPost(t, tokenAuthorA, postBody("Uncategorized", "uncategorized"))

	w := env.do(t, http.MethodGet, "/cms/categories/"+cat.ID+"/posts", tokenAuthorB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode[listResponse[postResponse]](t, w)
	require.Len(t, posts.Items, 1)
	require.NotNil(t, posts.Items[0].Category)
	assert.Equal(t, "Kegiatan", posts.Items[0].Category.Name)

	w = env.do(t, http.MethodGet, "/cms/categories/slug/kegiatan", tokenAuthorB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[categoryResponse](t, w).PostCount)

	w = env.do(t, http.MethodGet, "/cms/categories?search=KEG", tokenAuthorB, nil)
	assert.Len(t, decode[listResponse[categoryResponse]](t, w).Items, 1)
}
