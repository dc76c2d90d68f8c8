// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants shared across the application.
package model

// Permissions
const (
	PermissionPostsCreate      = "posts:create"
	PermissionPostsEdit        = "posts:edit"
	PermissionPostsDelete      = "posts:delete"
	PermissionPostsPublish     = "posts:publish"
	PermissionPagesCreate      = "pages:create"
	PermissionPagesEdit        = "pages:edit"
	PermissionPagesDelete      = "pages:delete"
	PermissionCategoriesManage = "categories:manage"
	PermissionMediaUpload      = "media:upload"
	PermissionMediaDelete      = "media:delete"
	PermissionGalleriesManage  = "galleries:manage"
	PermissionUsersManage      = "users:manage"

	// PermissionContentReadAll lets a role see other users' drafts.
	PermissionContentReadAll = "content:read_all"
	// PermissionContentEditAny lets a role modify content it did not author.
	PermissionContentEditAny = "content:edit_any"
)

// AllPermissions returns every permission known to the API.
func AllPermissions() []string {
	return []string{
		PermissionPostsCreate,
		PermissionPostsEdit,
		PermissionPostsDelete,
		PermissionPostsPublish,
		PermissionPagesCreate,
		PermissionPagesEdit,
		PermissionPagesDelete,
		PermissionCategoriesManage,
		PermissionMediaUpload,
		PermissionMediaDelete,
		PermissionGalleriesManage,
		PermissionUsersManage,
		PermissionContentReadAll,
		PermissionContentEditAny,
	}
}
