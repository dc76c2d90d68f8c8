// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Content statuses shared by posts and pages.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Entity types partition content between tenants.
const (
	EntityTypeYayasan = "yayasan"
	EntityTypeSchool  = "school"
)

// DefaultEntityType is used when a create request omits the entity type.
const DefaultEntityType = EntityTypeSchool

// IsValidEntityType reports whether s names a known tenant.
func IsValidEntityType(s string) bool {
	return s == EntityTypeYayasan || s == EntityTypeSchool
}

// IsValidStatus reports whether s is a known content status.
func IsValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}

// ToggleStatus returns the opposite publish status.
func ToggleStatus(s string) string {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}
