// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-api/internal/middleware"
	"github.com/olegiv/ocms-api/internal/model"
)

// Routes returns the router mounted under /cms. Every route requires a
// verified bearer token; writes additionally require a permission.
func (h *Handler) Routes(v middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)
	r.Use(middleware.Authenticate(v))

	can := func(perm string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(h.policy, perm)
	}

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.With(can(model.PermissionPostsCreate)).Post("/", h.CreatePost)
		r.With(can(model.PermissionPostsDelete)).Post("/bulk-delete", h.BulkDeletePosts)
		r.With(can(model.PermissionPostsPublish)).Post("/bulk-status", h.BulkPostStatus)
		r.Get("/slug/{slug}", h.GetPostBySlug)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Get("/tags", h.ListPostTags)
			r.With(can(model.PermissionPostsEdit)).Put("/", h.UpdatePost)
			r.With(can(model.PermissionPostsDelete)).Delete("/", h.DeletePost)
			r.With(can(model.PermissionPostsPublish)).Patch("/publish", h.TogglePostPublish)
		})
	})

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", h.ListPages)
		r.Get("/tree", h.PageTree)
		r.With(can(model.PermissionPagesCreate)).Post("/", h.CreatePage)
		r.Get("/slug/{slug}", h.GetPageBySlug)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPage)
			r.With(can(model.PermissionPagesEdit)).Put("/", h.UpdatePage)
			r.With(can(model.PermissionPagesDelete)).Delete("/", h.DeletePage)
			r.With(can(model.PermissionPagesEdit)).Patch("/publish", h.TogglePagePublish)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/all", h.AllCategories)
		r.Get("/slug/{slug}", h.GetCategoryBySlug)
		r.With(can(model.PermissionCategoriesManage)).Post("/", h.CreateCategory)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCategory)
			r.Get("/posts", h.CategoryPosts)
			r.With(can(model.PermissionCategoriesManage)).Put("/", h.UpdateCategory)
			r.With(can(model.PermissionCategoriesManage)).Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.With(can(model.PermissionMediaUpload)).Post("/upload", h.UploadMedia)
		r.With(can(model.PermissionMediaUpload)).Post("/upload-url", h.UploadURL)
		r.With(can(model.PermissionMediaDelete)).Post("/bulk-delete", h.BulkDeleteMedia)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMedia)
			r.With(can(model.PermissionMediaUpload)).Put("/", h.UpdateMedia)
			r.With(can(model.PermissionMediaDelete)).Delete("/", h.DeleteMedia)
		})
	})

	r.Route("/galleries", func(r chi.Router) {
		r.Get("/", h.ListGalleries)
		r.Get("/slug/{slug}", h.GetGalleryBySlug)
		r.With(can(model.PermissionGalleriesManage)).Post("/", h.CreateGallery)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetGallery)
			r.Group(func(r chi.Router) {
				r.Use(can(model.PermissionGalleriesManage))
				r.Put("/", h.UpdateGallery)
				r.Delete("/", h.DeleteGallery)
				r.Post("/media", h.AddGalleryMedia)
				r.Delete("/media", h.RemoveGalleryMedia)
				r.Put("/media/reorder", h.ReorderGalleryMedia)
			})
		})
	})

	r.Get("/tags", h.ListTags)
	r.Get("/tags/search", h.SearchTags)

	r.Get("/stats", h.Stats)
	r.Get("/stats/activity", h.RecentActivity)
	r.Get("/activity/{entityType}/{entityId}", h.EntityActivity)

	return r
}

// HealthRoutes registers the unauthenticated health endpoints on r.
func (h *Handler) HealthRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)
}
