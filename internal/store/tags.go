// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const tagColumns = "t.id, t.name, t.slug, t.created_at"

func scanTag(r rowScanner) (Tag, error) {
	var t Tag
	err := r.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	return t, translateError(err)
}

// ListTags returns one page of tags.
func (q *Queries) ListTags(ctx context.Context, search string, p Pagination) ([]Tag, int64, error) {
	l := NewListQuery(q.dialect, tagColumns, "tags t", "t.id").
		Search(search, "t.name").
		OrderBy("t.name ASC, t.id ASC")
	return runList(ctx, q, l, p, scanTag)
}

// SearchTags returns up to limit tags whose name contains term.
func (q *Queries) SearchTags(ctx context.Context, term string, limit int) ([]Tag, error) {
	items, _, err := q.ListTags(ctx, term, Pagination{Page: 1, Limit: limit})
	return items, err
}

// TagInput names a tag to find or create.
type TagInput struct {
	Name string
	Slug string
}

// EnsureTags finds or creates each tag by slug. Concurrent creators of the
// same tag converge on one row through the unique index.
func (q *Queries) EnsureTags(ctx context.Context, inputs []TagInput) ([]Tag, error) {
	tags := make([]Tag, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" || in.Slug == "" || seen[in.Slug] {
			continue
		}
		seen[in.Slug] = true

		_, err := q.exec(ctx, `INSERT INTO tags (id, name, slug, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING`, uuid.NewString(), name, in.Slug, q.now())
		if err != nil {
			return nil, err
		}
		tag, err := scanTag(q.queryRow(ctx, "SELECT "+tagColumns+" FROM tags t WHERE t.slug = ?", in.Slug))
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// SetPostTags replaces the tag set of a post.
func (q *Queries) SetPostTags(ctx context.Context, postID string, tagIDs []string) error {
	if _, err := q.exec(ctx, "DELETE FROM post_tags WHERE post_id = ?", postID); err != nil {
		return err
	}
	for _, id := range tagIDs {
		if _, err := q.exec(ctx, "INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			postID, id); err != nil {
			return err
		}
	}
	return nil
}

// ListPostTags returns the tags attached to a post, ordered by name.
func (q *Queries) ListPostTags(ctx context.Context, postID string) ([]Tag, error) {
	rows, err := q.query(ctx, "SELECT "+tagColumns+
		" FROM tags t JOIN post_tags pt ON pt.tag_id = t.id WHERE pt.post_id = ? ORDER BY t.name ASC", postID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTag)
}
