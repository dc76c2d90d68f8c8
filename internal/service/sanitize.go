// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"github.com/microcosm-cc/bluemonday"
)

// htmlSanitizer allows the safe subset of HTML an editor produces and strips
// scripts, event handlers and other active content.
var htmlSanitizer = bluemonday.UGCPolicy()

// SanitizeHTML cleans user-supplied post and page content.
func SanitizeHTML(s string) string {
	return htmlSanitizer.Sanitize(s)
}
