// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides data access for CMS content over database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the CMS queries against a connection or transaction.
type Queries struct {
	db      DBTX
	dialect Dialect
	now     func() time.Time
}

// New returns Queries bound to db.
func New(db DBTX, d Dialect) *Queries {
	return &Queries{db: db, dialect: d, now: utcNow}
}

// WithTx returns a copy of q that runs inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect, now: q.now}
}

// Dialect returns the SQL dialect of the underlying connection.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
	return res, translateError(err)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
	return rows, translateError(err)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

// count runs a single-value COUNT query.
func (q *Queries) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

// Store owns the database handle and hands out Queries.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore wraps db.
func NewStore(db *sql.DB, d Dialect) *Store {
	return &Store{Queries: New(db, d), db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn in a transaction, committing when fn returns nil.
// fn must only use the Queries it is given.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", translateError(err))
	}
	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer func() { _ = rows.Close() }()
	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// nullString returns a NullString that is valid when s is non-empty.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullStringPtr converts an optional string.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
