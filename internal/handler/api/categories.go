// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Slug        string  `json:"slug" validate:"required,min=2,max=100,slug"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=2,max=100"`
	Slug        *string `json:"slug" validate:"omitnil,min=2,max=100,slug"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

// ListCategories handles GET /cms/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	rows, total, err := h.store.ListCategories(r.Context(), r.URL.Query().Get("search"), p)
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(rows, toCategoryRowResponse), p, total))
}

// AllCategories handles GET /cms/categories/all.
func (h *Handler) AllCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.categories.GetOrLoad(r.Context(), cache.KeyCategoriesAll,
		func(ctx context.Context) (listResponse[categoryResponse], error) {
			rows, err := h.store.ListAllCategories(ctx)
			if err != nil {
				return listResponse[categoryResponse]{}, err
			}
			return listResponse[categoryResponse]{Items: mapItems(rows, toCategoryRowResponse)}, nil
		})
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCategory handles GET /cms/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCategory(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryRowResponse(c))
}

// GetCategoryBySlug handles GET /cms/categories/slug/{slug}.
func (h *Handler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCategoryBySlug(r.Context(), urlParam(r, "slug"))
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryRowResponse(c))
}

// CategoryPosts handles GET /cms/categories/{id}/posts.
func (h *Handler) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	status, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	cat, err := h.store.GetCategory(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	h.listPosts(w, r, store.PostFilter{
		Viewer:     h.caller(r).viewer(),
		Status:     status,
		EntityType: entityType,
		CategoryID: cat.ID,
		Search:     r.URL.Query().Get("search"),
	}, p)
}

// CreateCategory handles POST /cms/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "category", err)
		return
	}

	c := h.caller(r)
	var cat store.Category
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		var err error
		cat, err = q.CreateCategory(ctx, store.CategoryParams{
			Name:        strings.TrimSpace(req.Name),
			Slug:        req.Slug,
			Description: util.NullStringFromPtr(req.Description),
		})
		if err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionCreate, model.EntityCategory, cat.ID,
			map[string]any{"name": cat.Name})
	})
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	h.invalidate(ctx, cache.PrefixCategories, cache.PrefixStats)
	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

// UpdateCategory handles PUT /cms/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "category", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	var cat store.Category
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		params := store.CategoryParams{
			Name:        existing.Name,
			Slug:        existing.Slug,
			Description: existing.Description,
		}
		if req.Name != nil {
			params.Name = strings.TrimSpace(*req.Name)
		}
		if req.Slug != nil {
			params.Slug = *req.Slug
		}
		if req.Description != nil {
			params.Description = util.NullStringFromPtr(req.Description)
		}
		if cat, err = q.UpdateCategory(ctx, id, params); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionUpdate, model.EntityCategory, id,
			map[string]any{"name": cat.Name})
	})
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	h.invalidate(ctx, cache.PrefixCategories, cache.PrefixStats)
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// DeleteCategory handles DELETE /cms/categories/{id}. Categories that still
// hold posts are refused with the post count.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	id := urlParam(r, "id")
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		n, err := q.CountPostsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			ae := newAPIError(http.StatusBadRequest, CodeCategoryHasPosts,
				"Cannot delete category that has posts. Move or delete the posts first.")
			ae.postCount = &n
			return ae
		}
		if err := q.DeleteCategory(ctx, id); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionDelete, model.EntityCategory, id,
			map[string]any{"name": existing.Name})
	})
	if err != nil {
		writeError(w, r, "category", err)
		return
	}
	h.invalidate(ctx, cache.PrefixCategories, cache.PrefixStats)
	writeSuccess(w)
}
