// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Post struct {
	ID              string
	Title           string
	Slug            string
	Content         string
	Excerpt         sql.NullString
	Status          string
	CategoryID      sql.NullString
	FeaturedImageID sql.NullString
	AuthorID        string
	EntityType      string
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PostRow is a post joined with its author and category.
type PostRow struct {
	Post
	AuthorName   sql.NullString
	AuthorEmail  sql.NullString
	CategoryName sql.NullString
}

type Page struct {
	ID          string
	Title       string
	Slug        string
	Content     string
	Status      string
	ParentID    sql.NullString
	AuthorID    string
	EntityType  string
	PublishedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PageRow is a page joined with its author.
type PageRow struct {
	Page
	AuthorName  sql.NullString
	AuthorEmail sql.NullString
}

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryRow is a category with the number of posts filed under it.
type CategoryRow struct {
	Category
	PostCount int64
}

type Media struct {
	ID           string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	URL          string
	Bucket       string
	Path         string
	ThumbnailURL sql.NullString
	Width        sql.NullInt64
	Height       sql.NullInt64
	AltText      sql.NullString
	Caption      sql.NullString
	UploadedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Gallery struct {
	ID          string
	Title       string
	Slug        string
	Description sql.NullString
	EntityType  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GalleryRow is a gallery with its media count.
type GalleryRow struct {
	Gallery
	MediaCount int64
}

type Tag struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

type Activity struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Metadata   sql.NullString
	IPAddress  sql.NullString
	UserAgent  sql.NullString
	CreatedAt  time.Time
}

// ActivityRow is an activity joined with its actor.
type ActivityRow struct {
	Activity
	UserName  sql.NullString
	UserEmail sql.NullString
}
