// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-api/internal/model"
)

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination selects one page of a listing.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their valid ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page > p.MaxPage() {
		p.Page = p.MaxPage()
	}
	return p
}

// MaxPage is the largest page whose offset fits in an int.
func (p Pagination) MaxPage() int {
	if p.Limit <= 1 {
		return math.MaxInt
	}
	return math.MaxInt/p.Limit + 1
}

// Offset returns the row offset of the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Viewer describes who a listing is built for.
type Viewer struct {
	UserID string
	// ReadAll lifts the own-drafts restriction.
	ReadAll bool
}

// ListQuery builds a filtered, searchable, paginated SELECT and its matching
// COUNT. Every listing in the store goes through it.
type ListQuery struct {
	dialect Dialect
	columns string
	from    string
	key     string
	joins   []string
	conds   []string
	args    []any
	groupBy string
	orderBy string
}

// NewListQuery starts a listing over from (a table with optional alias).
// key is the distinct row identity used by the count query, e.g. "p.id".
func NewListQuery(d Dialect, columns, from, key string) *ListQuery {
	return &ListQuery{
		dialect: d,
		columns: columns,
		from:    from,
		key:     key,
	}
}

// Join adds a JOIN clause shared by the data and count queries.
func (l *ListQuery) Join(clause string) *ListQuery {
	l.joins = append(l.joins, clause)
	return l
}

// Where adds a raw condition with ? placeholders.
func (l *ListQuery) Where(cond string, args ...any) *ListQuery {
	l.conds = append(l.conds, cond)
	l.args = append(l.args, args...)
	return l
}

// Eq filters column = value when value is non-empty.
func (l *ListQuery) Eq(column, value string) *ListQuery {
	if value == "" {
		return l
	}
	return l.Where(column+" = ?", value)
}

// EqOrNull behaves like Eq, except the literal "null" selects rows where column IS NULL.
func (l *ListQuery) EqOrNull(column, value string) *ListQuery {
	if value == "null" {
		return l.Where(column + " IS NULL")
	}
	return l.Eq(column, value)
}

// TypePrefix filters a MIME type column. A value without a slash matches the
// whole top-level type ("image" matches "image/png").
func (l *ListQuery) TypePrefix(column, value string) *ListQuery {
	if value == "" {
		return l
	}
	if strings.Contains(value, "/") {
		return l.Eq(column, value)
	}
	return l.Where(column+" LIKE ? ESCAPE '\\'", escapeLike(value)+"/%")
}

// Search adds a case-insensitive substring match over columns, OR-ed together.
func (l *ListQuery) Search(term string, columns ...string) *ListQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return l
	}
	pattern := "%" + escapeLike(term) + "%"
	op := l.dialect.likeOperator()
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = c + " " + op + " ? ESCAPE '\\'"
		args[i] = pattern
	}
	return l.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// Visible restricts rows to published ones plus the viewer's own, unless the
// viewer may read everything.
func (l *ListQuery) Visible(v Viewer, statusColumn, authorColumn string) *ListQuery {
	if v.ReadAll {
		return l
	}
	return l.Where("("+statusColumn+" = ? OR "+authorColumn+" = ?)", model.StatusPublished, v.UserID)
}

// GroupBy sets a GROUP BY expression for aggregate columns.
func (l *ListQuery) GroupBy(expr string) *ListQuery {
	l.groupBy = expr
	return l
}

// OrderBy replaces the default newest-first ordering.
func (l *ListQuery) OrderBy(expr string) *ListQuery {
	l.orderBy = expr
	return l
}

func (l *ListQuery) whereClause() string {
	if len(l.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(l.conds, " AND ")
}

func (l *ListQuery) joinClause() string {
	if len(l.joins) == 0 {
		return ""
	}
	return " " + strings.Join(l.joins, " ")
}

// Build returns the data query and the count query with their arguments,
// already rebound for the dialect.
func (l *ListQuery) Build(p Pagination) (string, []any, string, []any) {
	p = p.Normalize()
	order := l.orderBy
	if order == "" {
		order = l.createdAtColumn() + " DESC, " + l.key + " DESC"
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(l.columns)
	sb.WriteString(" FROM ")
	sb.WriteString(l.from)
	sb.WriteString(l.joinClause())
	sb.WriteString(l.whereClause())
	if l.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(l.groupBy)
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order)
	sb.WriteString(" LIMIT ? OFFSET ?")

	listArgs := make([]any, 0, len(l.args)+2)
	listArgs = append(listArgs, l.args...)
	listArgs = append(listArgs, p.Limit, p.Offset())

	countSQL := "SELECT COUNT(DISTINCT " + l.key + ") FROM " + l.from + l.joinClause() + l.whereClause()
	countArgs := append([]any(nil), l.args...)

	return l.dialect.Rebind(sb.String()), listArgs, l.dialect.Rebind(countSQL), countArgs
}

// createdAtColumn qualifies created_at with the alias of the key column.
func (l *ListQuery) createdAtColumn() string {
	if i := strings.IndexByte(l.key, '.'); i >= 0 {
		return l.key[:i] + ".created_at"
	}
	return "created_at"
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// runList executes the data and count queries concurrently.
func runList[T any](ctx context.Context, q *Queries, l *ListQuery, p Pagination, scan func(rowScanner) (T, error)) ([]T, int64, error) {
	listSQL, listArgs, countSQL, countArgs := l.Build(p)

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := q.db.QueryContext(gctx, listSQL, listArgs...)
		if err != nil {
			return translateError(err)
		}
		items, err = collect(rows, scan)
		return err
	})
	g.Go(func() error {
		return translateError(q.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&total))
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
