// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) uploadImages(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		w := e.upload(t, tokenAuthorA, uploadRequest(t, fmt.Sprintf("img-%d.png", i), "image/png", pngBytes(t, 16, 16)))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decode[mediaResponse](t, w).ID)
	}
	return ids
}

func mediaIDs(g galleryResponse) []string {
	ids := make([]string, 0, len(g.Media))
	for _, m := range g.Media {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestGalleryMediaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	media := env.uploadImages(t, 3)

	w := env.do(t, http.MethodPost, "/cms/galleries", tokenAuthorA, map[string]any{
		"title":    "Wisuda 2026",
		"slug":     "wisuda-2026",
		"mediaIds": media[:2],
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	g := decode[galleryResponse](t, w)
	assert.Equal(t, "school", g.EntityType)
	assert.Equal(t, media[:2], mediaIDs(g))
	assert.EqualValues(t, 2, g.MediaCount)

	base := "/cms/galleries/" + g.ID + "/media"

	w = env.do(t, http.MethodPost, base, tokenAuthorA, map[string]any{"mediaIds": []string{media[2], media[0]}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, media, mediaIDs(decode[galleryResponse](t, w)), "existing items keep their place")

	reversed := []string{media[2], media[1], media[0]}
	w = env.do(t, http.MethodPut, base+"/reorder", tokenAuthorA, map[string]any{"mediaIds": reversed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, reversed, mediaIDs(decode[galleryResponse](t, w)))

	w = env.do(t, http.MethodDelete, base, tokenAuthorA, map[string]any{"mediaIds": []string{media[1]}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{media[2], media[0]}, mediaIDs(decode[galleryResponse](t, w)))

	w = env.do(t, http.MethodGet, "/cms/galleries/slug/wisuda-2026", tokenAuthorB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{media[2], media[0]}, mediaIDs(decode[galleryResponse](t, w)))

	w = env.do(t, http.MethodGet, "/cms/galleries", tokenAuthorB, nil)
	list := decode[listResponse[galleryResponse]](t, w)
	require.Len(t, list.Items, 1)
	assert.EqualValues(t, 2, list.Items[0].MediaCount)

	w = env.do(t, http.MethodPost, base, tokenAuthorA, map[string]any{"mediaIds": []string{"00000000-0000-4000-8000-000000000000"}})
	assertStatusCode(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodDelete, "/cms/galleries/"+g.ID, tokenAuthorA, nil)
	assertStatusCode(t, w, http.StatusOK)
	w = env.do(t, http.MethodGet, "/cms/media/"+media[0], tokenAuthorA, nil)
	assertStatusCode(t, w, http.StatusOK)
}

func TestUpdateGallery(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/cms/galleries", tokenEditor, map[string]any{
		"title": "Pentas seni", "slug": "pentas-seni", "entityType": "yayasan",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	g := decode[galleryResponse](t, w)

	w = env.do(t, http.MethodPut, "/cms/galleries/"+g.ID, tokenEditor, map[string]any{"title": "Pentas seni 2026"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[galleryResponse](t, w)
	assert.Equal(t, "Pentas seni 2026", updated.Title)
	assert.Equal(t, "yayasan", updated.EntityType)

	w = env.do(t, http.MethodGet, "/cms/galleries?entityType=school", tokenEditor, nil)
	assert.Empty(t, decode[listResponse[galleryResponse]](t, w).Items)
	w = env.do(t, http.MethodGet, "/cms/galleries?entityType=yayasan", tokenEditor, nil)
	assert.Len(t, decode[listResponse[galleryResponse]](t, w).Items, 1)
}
