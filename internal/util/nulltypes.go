// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"
)

// NullStringFromPtr converts a pointer to string into sql.NullString.
// An empty string is stored as NULL.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr == nil || *ptr == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *ptr, Valid: true}
}

// PtrFromNullString returns nil for an invalid NullString.
func PtrFromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// PtrFromNullTime returns nil for an invalid NullTime.
func PtrFromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// PtrFromNullInt64 returns nil for an invalid NullInt64.
func PtrFromNullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// NullInt64FromValue creates a valid sql.NullInt64 when val is positive.
func NullInt64FromValue(val int64) sql.NullInt64 {
	return sql.NullInt64{Int64: val, Valid: val > 0}
}
