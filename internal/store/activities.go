// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const activityRowColumns = `a.id, a.user_id, a.action, a.entity_type, a.entity_id, a.metadata,
	a.ip_address, a.user_agent, a.created_at, u.name, u.email`

func scanActivityRow(r rowScanner) (ActivityRow, error) {
	var a ActivityRow
	err := r.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Metadata,
		&a.IPAddress, &a.UserAgent, &a.CreatedAt, &a.UserName, &a.UserEmail)
	return a, translateError(err)
}

// CreateActivityParams describes one audit entry.
type CreateActivityParams struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
}

// CreateActivity appends an entry to the activity log.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (Activity, error) {
	var metadata sql.NullString
	if len(arg.Metadata) > 0 {
		b, err := json.Marshal(arg.Metadata)
		if err != nil {
			return Activity{}, fmt.Errorf("encoding activity metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}
	a := Activity{
		ID:         uuid.NewString(),
		UserID:     arg.UserID,
		Action:     arg.Action,
		EntityType: arg.EntityType,
		EntityID:   arg.EntityID,
		Metadata:   metadata,
		IPAddress:  nullString(arg.IPAddress),
		UserAgent:  nullString(arg.UserAgent),
		CreatedAt:  q.now(),
	}
	_, err := q.exec(ctx, `INSERT INTO activities (id, user_id, action, entity_type, entity_id, metadata,
		ip_address, user_agent, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Action, a.EntityType, a.EntityID, a.Metadata, a.IPAddress, a.UserAgent, a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

// ListRecentActivity returns the newest entries, optionally limited to one actor.
func (q *Queries) ListRecentActivity(ctx context.Context, userID string, limit int) ([]ActivityRow, error) {
	query := "SELECT " + activityRowColumns + " FROM activities a LEFT JOIN users u ON u.id = a.user_id"
	var args []any
	if userID != "" {
		query += " WHERE a.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY a.created_at DESC, a.id DESC LIMIT ?"
	args = append(args, limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanActivityRow)
}

// ListEntityActivity returns the entries recorded for one entity, newest first.
func (q *Queries) ListEntityActivity(ctx context.Context, entityType, entityID string) ([]ActivityRow, error) {
	rows, err := q.query(ctx, "SELECT "+activityRowColumns+
		" FROM activities a LEFT JOIN users u ON u.id = a.user_id"+
		" WHERE a.entity_type = ? AND a.entity_id = ? ORDER BY a.created_at DESC, a.id DESC", entityType, entityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanActivityRow)
}

// CountActivities returns the size of the activity log.
func (q *Queries) CountActivities(ctx context.Context) (int64, error) {
	return q.count(ctx, "SELECT COUNT(*) FROM activities")
}
