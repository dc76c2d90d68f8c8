// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidReference is returned when a foreign key points at a missing row.
	ErrInvalidReference = errors.New("store: invalid reference")
	// ErrInUse is returned when a row is still referenced and cannot be deleted.
	ErrInUse = errors.New("store: row is referenced")
)

// DuplicateError reports a unique index violation.
type DuplicateError struct {
	Table string
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("store: duplicate %s.%s", e.Table, e.Field)
}

// IsDuplicate reports whether err is a unique violation on field.
// An empty field matches any column.
func IsDuplicate(err error, field string) bool {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	return field == "" || dup.Field == field
}

var sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: (\w+)\.(\w+)`)

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &DuplicateError{Table: pgErr.TableName, Field: fieldFromIndex(pgErr.ConstraintName)}
		case "23503":
			if strings.HasPrefix(strings.ToUpper(pgErr.Message), "UPDATE OR DELETE") {
				return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
		}
		return err
	}

	msg := err.Error()
	if m := sqliteUniqueRe.FindStringSubmatch(msg); m != nil {
		return &DuplicateError{Table: m[1], Field: m[2]}
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %s", ErrInvalidReference, msg)
	}
	return err
}

// fieldFromIndex extracts the column from a ux_<table>_<column> index name.
func fieldFromIndex(name string) string {
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[i+1:]
	}
	return name
}
