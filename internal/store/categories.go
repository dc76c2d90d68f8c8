// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const categoryColumns = "c.id, c.name, c.slug, c.description, c.created_at, c.updated_at"

const categoryRowColumns = categoryColumns + ", COUNT(p.id)"

func categoryFields(c *Category) []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt}
}

func scanCategory(r rowScanner) (Category, error) {
	var c Category
	err := r.Scan(categoryFields(&c)...)
	return c, translateError(err)
}

func scanCategoryRow(r rowScanner) (CategoryRow, error) {
	var c CategoryRow
	dest := append(categoryFields(&c.Category), &c.PostCount)
	err := r.Scan(dest...)
	return c, translateError(err)
}

// ListCategories returns one page of categories with their post counts.
func (q *Queries) ListCategories(ctx context.Context, search string, p Pagination) ([]CategoryRow, int64, error) {
	l := NewListQuery(q.dialect, categoryRowColumns, "categories c", "c.id").
		Join("LEFT JOIN posts p ON p.category_id = c.id").
		Search(search, "c.name").
		GroupBy("c.id")
	return runList(ctx, q, l, p, scanCategoryRow)
}

// ListAllCategories returns every category ordered by name.
func (q *Queries) ListAllCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.query(ctx, "SELECT "+categoryRowColumns+
		" FROM categories c LEFT JOIN posts p ON p.category_id = c.id GROUP BY c.id ORDER BY c.name ASC")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCategoryRow)
}

// GetCategory returns a category with its post count.
func (q *Queries) GetCategory(ctx context.Context, id string) (CategoryRow, error) {
	return scanCategoryRow(q.queryRow(ctx, "SELECT "+categoryRowColumns+
		" FROM categories c LEFT JOIN posts p ON p.category_id = c.id WHERE c.id = ? GROUP BY c.id", id))
}

// GetCategoryBySlug returns a category by slug with its post count.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (CategoryRow, error) {
	return scanCategoryRow(q.queryRow(ctx, "SELECT "+categoryRowColumns+
		" FROM categories c LEFT JOIN posts p ON p.category_id = c.id WHERE c.slug = ? GROUP BY c.id", slug))
}

// CategoryParams holds the writable columns of a category.
type CategoryParams struct {
	Name        string
	Slug        string
	Description sql.NullString
}

// CreateCategory inserts a category.
func (q *Queries) CreateCategory(ctx context.Context, arg CategoryParams) (Category, error) {
	now := q.now()
	c := Category{
		ID:          uuid.NewString(),
		Name:        arg.Name,
		Slug:        arg.Slug,
		Description: arg.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := q.exec(ctx, `INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// UpdateCategory overwrites a category's writable columns.
func (q *Queries) UpdateCategory(ctx context.Context, id string, arg CategoryParams) (Category, error) {
	res, err := q.exec(ctx, "UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?",
		arg.Name, arg.Slug, arg.Description, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Category{}, err
	}
	return scanCategory(q.queryRow(ctx, "SELECT "+categoryColumns+" FROM categories c WHERE c.id = ?", id))
}

// DeleteCategory removes a category. A category still referenced by posts
// fails with ErrInvalidReference or ErrInUse depending on the driver.
func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	res, err := q.exec(ctx, "DELETE FROM categories WHERE id = ?", id)
	return requireAffected(res, err)
}
