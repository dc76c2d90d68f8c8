// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const userColumns = "id, email, name, role, created_at, updated_at"

func scanUser(r rowScanner) (User, error) {
	var u User
	err := r.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, translateError(err)
}

// UpsertUserParams mirrors an identity provider subject into the users table.
type UpsertUserParams struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// UpsertUser inserts the user or refreshes its email, name and role.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) error {
	now := q.now()
	_, err := q.exec(ctx, `INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			updated_at = excluded.updated_at`,
		arg.ID, arg.Email, arg.Name, arg.Role, now, now)
	return err
}

// GetUser returns a user by id.
func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(q.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}
