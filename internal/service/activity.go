// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic shared by the API handlers,
// including the activity log written alongside every mutation.
package service

import (
	"context"
	"net/http"

	"github.com/mileusna/useragent"

	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

// maxUserAgentLength caps the stored user agent string.
const maxUserAgentLength = 512

// Actor identifies who performed a mutation and from where.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// ActorFromRequest builds an Actor for userID from the request's client info.
func ActorFromRequest(r *http.Request, userID string) Actor {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}
	return Actor{UserID: userID, IPAddress: util.ClientIP(r), UserAgent: ua}
}

// ClientInfo summarizes a user agent string.
type ClientInfo struct {
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"deviceType"`
}

// ParseClient extracts browser, OS and device type from a user agent string.
func ParseClient(uaString string) ClientInfo {
	ua := useragent.Parse(uaString)

	info := ClientInfo{Browser: ua.Name, OS: ua.OS}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		info.DeviceType = "mobile"
	case ua.Tablet:
		info.DeviceType = "tablet"
	case ua.Bot:
		info.DeviceType = "bot"
	default:
		info.DeviceType = "desktop"
	}
	return info
}

// LogActivity appends one activity entry using q, which should be the
// transaction that performed the mutation.
func LogActivity(ctx context.Context, q *store.Queries, a Actor, action, entityType, entityID string, metadata map[string]any) error {
	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if a.UserAgent != "" {
		meta["client"] = ParseClient(a.UserAgent)
	}

	_, err := q.CreateActivity(ctx, store.CreateActivityParams{
		UserID:     a.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
		IPAddress:  a.IPAddress,
		UserAgent:  a.UserAgent,
	})
	return err
}
