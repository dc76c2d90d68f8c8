// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/olegiv/ocms-api/internal/model"
)

// Run with: go test -tags=integration -run TestPostgres ./internal/store/...
func TestPostgresDialect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cms"),
		postgres.WithUsername("cms"),
		postgres.WithPassword("cms"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	cfg := DefaultDBConfig(dsn)
	cfg.Dialect = DialectPostgres
	db, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db, DialectPostgres); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	s := NewStore(db, DialectPostgres)
	createUser(t, s, "alice", "author")
	createPost(t, s, "alice", "hello-world", model.StatusDraft)

	_, err = s.CreatePost(ctx, "alice", PostParams{
		Title: "dup", Slug: "hello-world", Content: "c", Status: model.StatusDraft, EntityType: "school",
	})
	if !IsDuplicate(err, "slug") {
		t.Fatalf("expected duplicate slug on postgres, got %v", err)
	}

	rows, total, err := s.ListPosts(ctx, PostFilter{Viewer: Viewer{UserID: "bob"}, Search: "HELLO"}, Pagination{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Errorf("bob should not see alice's draft, got %d", total)
	}

	rows, total, err = s.ListPosts(ctx, PostFilter{Viewer: Viewer{UserID: "alice"}, Search: "hello"}, Pagination{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Errorf("alice should see her draft via ILIKE, got %d", total)
	}
}
