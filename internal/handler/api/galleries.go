// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

type createGalleryRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Slug        string   `json:"slug" validate:"required,min=2,max=200,slug"`
	Description *string  `json:"description" validate:"omitnil,max=1000"`
	EntityType  string   `json:"entityType" validate:"omitempty,oneof=yayasan school"`
	MediaIDs    []string `json:"mediaIds" validate:"omitempty,max=500,dive,uuid"`
}

type updateGalleryRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=2,max=200"`
	Slug        *string `json:"slug" validate:"omitnil,min=2,max=200,slug"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	EntityType  *string `json:"entityType" validate:"omitnil,oneof=yayasan school"`
}

type galleryMediaRequest struct {
	MediaIDs []string `json:"mediaIds" validate:"required,min=1,max=500,dive,uuid"`
}

// ListGalleries handles GET /cms/galleries.
func (h *Handler) ListGalleries(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	_, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	rows, total, err := h.store.ListGalleries(r.Context(), store.GalleryFilter{
		EntityType: entityType,
		Search:     r.URL.Query().Get("search"),
	}, p)
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(rows, toGalleryRowResponse), p, total))
}

// GetGallery handles GET /cms/galleries/{id}.
func (h *Handler) GetGallery(w http.ResponseWriter, r *http.Request) {
	h.writeGallery(w, r, func(ctx context.Context) (store.Gallery, error) {
		return h.store.GetGallery(ctx, urlParam(r, "id"))
	})
}

// GetGalleryBySlug handles GET /cms/galleries/slug/{slug}.
func (h *Handler) GetGalleryBySlug(w http.ResponseWriter, r *http.Request) {
	h.writeGallery(w, r, func(ctx context.Context) (store.Gallery, error) {
		return h.store.GetGalleryBySlug(ctx, urlParam(r, "slug"))
	})
}

func (h *Handler) writeGallery(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (store.Gallery, error)) {
	ctx := r.Context()
	g, err := fetch(ctx)
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	media, err := h.store.ListGalleryMedia(ctx, g.ID)
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeJSON(w, http.StatusOK, toGalleryResponse(g, media))
}

// CreateGallery handles POST /cms/galleries.
func (h *Handler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createGalleryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "gallery", err)
		return
	}

	c := h.caller(r)
	var (
		g     store.Gallery
		media []store.Media
	)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		var err error
		g, err = q.CreateGallery(ctx, store.GalleryParams{
			Title:       strings.TrimSpace(req.Title),
			Slug:        req.Slug,
			Description: util.NullStringFromPtr(req.Description),
			EntityType:  defaultString(req.EntityType, model.DefaultEntityType),
		})
		if err != nil {
			return err
		}
		if len(req.MediaIDs) > 0 {
			if err := q.AddGalleryMedia(ctx, g.ID, uniqueStrings(req.MediaIDs)); err != nil {
				return err
			}
		}
		if media, err = q.ListGalleryMedia(ctx, g.ID); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionCreate, model.EntityGallery, g.ID,
			map[string]any{"title": g.Title})
	})
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGalleryResponse(g, media))
}

// UpdateGallery handles PUT /cms/galleries/{id}.
func (h *Handler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateGalleryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "gallery", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	var (
		g     store.Gallery
		media []store.Media
	)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetGallery(ctx, id)
		if err != nil {
			return err
		}
		params := store.GalleryParams{
			Title:       existing.Title,
			Slug:        existing.Slug,
			Description: existing.Description,
			EntityType:  existing.EntityType,
		}
		if req.Title != nil {
			params.Title = strings.TrimSpace(*req.Title)
		}
		if req.Slug != nil {
			params.Slug = *req.Slug
		}
		if req.Description != nil {
			params.Description = util.NullStringFromPtr(req.Description)
		}
		if req.EntityType != nil {
			params.EntityType = *req.EntityType
		}
		if g, err = q.UpdateGallery(ctx, id, params); err != nil {
			return err
		}
		if media, err = q.ListGalleryMedia(ctx, id); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionUpdate, model.EntityGallery, id,
			map[string]any{"title": g.Title})
	})
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeJSON(w, http.StatusOK, toGalleryResponse(g, media))
}

// DeleteGallery handles DELETE /cms/galleries/{id}. Media items stay in the library.
func (h *Handler) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	id := urlParam(r, "id")
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetGallery(ctx, id)
		if err != nil {
			return err
		}
		if err := q.DeleteGallery(ctx, id); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionDelete, model.EntityGallery, id,
			map[string]any{"title": existing.Title})
	})
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeSuccess(w)
}

// AddGalleryMedia handles POST /cms/galleries/{id}/media.
func (h *Handler) AddGalleryMedia(w http.ResponseWriter, r *http.Request) {
	h.changeGalleryMedia(w, r, "add", (*store.Queries).AddGalleryMedia)
}

// RemoveGalleryMedia handles DELETE /cms/galleries/{id}/media.
func (h *Handler) RemoveGalleryMedia(w http.ResponseWriter, r *http.Request) {
	h.changeGalleryMedia(w, r, "remove", (*store.Queries).RemoveGalleryMedia)
}

// ReorderGalleryMedia handles PUT /cms/galleries/{id}/media/reorder.
func (h *Handler) ReorderGalleryMedia(w http.ResponseWriter, r *http.Request) {
	h.changeGalleryMedia(w, r, "reorder", (*store.Queries).ReorderGalleryMedia)
}

// changeGalleryMedia applies op to the gallery's media list and responds
// with the updated gallery. The change is recorded as a gallery update.
func (h *Handler) changeGalleryMedia(w http.ResponseWriter, r *http.Request, change string,
	op func(*store.Queries, context.Context, string, []string) error) {
	ctx := r.Context()
	var req galleryMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "gallery", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	ids := uniqueStrings(req.MediaIDs)
	var (
		g     store.Gallery
		media []store.Media
	)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		var err error
		if g, err = q.GetGallery(ctx, id); err != nil {
			return err
		}
		if err := op(q, ctx, id, ids); err != nil {
			return err
		}
		if media, err = q.ListGalleryMedia(ctx, id); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionUpdate, model.EntityGallery, id,
			map[string]any{"title": g.Title, "media": change, "mediaIds": ids})
	})
	if err != nil {
		writeError(w, r, "gallery", err)
		return
	}
	writeJSON(w, http.StatusOK, toGalleryResponse(g, media))
}
