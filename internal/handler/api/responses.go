// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"time"

	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

type authorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postResponse struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Content         string        `json:"content,omitempty"`
	Excerpt         *string       `json:"excerpt,omitempty"`
	Status          string        `json:"status"`
	CategoryID      *string       `json:"categoryId,omitempty"`
	FeaturedImageID *string       `json:"featuredImageId,omitempty"`
	AuthorID        string        `json:"authorId"`
	EntityType      string        `json:"entityType"`
	PublishedAt     *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Author          *authorRef    `json:"author,omitempty"`
	Category        *categoryRef  `json:"category,omitempty"`
	Tags            []tagResponse `json:"tags,omitempty"`
}

func toPostResponse(p store.Post) postResponse {
	return postResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         util.PtrFromNullString(p.Excerpt),
		Status:          p.Status,
		CategoryID:      util.PtrFromNullString(p.CategoryID),
		FeaturedImageID: util.PtrFromNullString(p.FeaturedImageID),
		AuthorID:        p.AuthorID,
		EntityType:      p.EntityType,
		PublishedAt:     util.PtrFromNullTime(p.PublishedAt),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toPostRowResponse(p store.PostRow) postResponse {
	resp := toPostResponse(p.Post)
	if p.AuthorName.Valid {
		resp.Author = &authorRef{ID: p.AuthorID, Name: p.AuthorName.String, Email: p.AuthorEmail.String}
	}
	if p.CategoryID.Valid && p.CategoryName.Valid {
		resp.Category = &categoryRef{ID: p.CategoryID.String, Name: p.CategoryName.String}
	}
	return resp
}

// toPostListItem omits the content body from listings.
func toPostListItem(p store.PostRow) postResponse {
	resp := toPostRowResponse(p)
	resp.Content = ""
	return resp
}

type pageResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content,omitempty"`
	Status      string     `json:"status"`
	ParentID    *string    `json:"parentId,omitempty"`
	AuthorID    string     `json:"authorId"`
	EntityType  string     `json:"entityType"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      *authorRef `json:"author,omitempty"`
}

func toPageResponse(p store.Page) pageResponse {
	return pageResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		Status:      p.Status,
		ParentID:    util.PtrFromNullString(p.ParentID),
		AuthorID:    p.AuthorID,
		EntityType:  p.EntityType,
		PublishedAt: util.PtrFromNullTime(p.PublishedAt),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPageRowResponse(p store.PageRow) pageResponse {
	resp := toPageResponse(p.Page)
	if p.AuthorName.Valid {
		resp.Author = &authorRef{ID: p.AuthorID, Name: p.AuthorName.String, Email: p.AuthorEmail.String}
	}
	return resp
}

func toPageListItem(p store.PageRow) pageResponse {
	resp := toPageRowResponse(p)
	resp.Content = ""
	return resp
}

// pageNode is an entry of the page tree.
type pageNode struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Status     string      `json:"status"`
	EntityType string      `json:"entityType"`
	ParentID   *string     `json:"parentId"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Children   []*pageNode `json:"children"`
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	PostCount   int64     `json:"postCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCategoryResponse(c store.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: util.PtrFromNullString(c.Description),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryRowResponse(c store.CategoryRow) categoryResponse {
	resp := toCategoryResponse(c.Category)
	resp.PostCount = c.PostCount
	return resp
}

type mediaResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnailUrl,omitempty"`
	Bucket       string    `json:"bucket"`
	Path         string    `json:"path"`
	Width        *int64    `json:"width,omitempty"`
	Height       *int64    `json:"height,omitempty"`
	AltText      *string   `json:"altText,omitempty"`
	Caption      *string   `json:"caption,omitempty"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toMediaResponse(m store.Media) mediaResponse {
	return mediaResponse{
		ID:           m.ID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		URL:          m.URL,
		ThumbnailURL: util.PtrFromNullString(m.ThumbnailURL),
		Bucket:       m.Bucket,
		Path:         m.Path,
		Width:        util.PtrFromNullInt64(m.Width),
		Height:       util.PtrFromNullInt64(m.Height),
		AltText:      util.PtrFromNullString(m.AltText),
		Caption:      util.PtrFromNullString(m.Caption),
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type galleryResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	EntityType  string          `json:"entityType"`
	MediaCount  int64           `json:"mediaCount"`
	Media       []mediaResponse `json:"media,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toGalleryResponse(g store.Gallery, media []store.Media) galleryResponse {
	resp := galleryResponse{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: util.PtrFromNullString(g.Description),
		EntityType:  g.EntityType,
		MediaCount:  int64(len(media)),
	}
	if media != nil {
		resp.Media = mapItems(media, toMediaResponse)
	}
	resp.CreatedAt, resp.UpdatedAt = g.CreatedAt, g.UpdatedAt
	return resp
}

func toGalleryRowResponse(g store.GalleryRow) galleryResponse {
	resp := toGalleryResponse(g.Gallery, nil)
	resp.MediaCount = g.MediaCount
	return resp
}

type tagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTagResponse(t store.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
}

type activityResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	User       *authorRef      `json:"user,omitempty"`
}

func toActivityResponse(a store.ActivityRow) activityResponse {
	resp := activityResponse{
		ID:         a.ID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		CreatedAt:  a.CreatedAt,
	}
	if a.Metadata.Valid && json.Valid([]byte(a.Metadata.String)) {
		resp.Metadata = json.RawMessage(a.Metadata.String)
	}
	if a.UserName.Valid {
		resp.User = &authorRef{ID: a.UserID, Name: a.UserName.String, Email: a.UserEmail.String}
	}
	return resp
}
