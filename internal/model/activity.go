// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Activity actions
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionPublish   = "publish"
	ActionUnpublish = "unpublish"
)

// Activity entity kinds
const (
	EntityPost     = "post"
	EntityPage     = "page"
	EntityCategory = "category"
	EntityMedia    = "media"
	EntityGallery  = "gallery"
)

// PublishAction returns the activity action recorded for a status change.
func PublishAction(newStatus string) string {
	if newStatus == StatusPublished {
		return ActionPublish
	}
	return ActionUnpublish
}
