// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostKind discriminates the content payload of a post.
type PostKind string

const (
	PostKindText    PostKind = "text"
	PostKindGallery PostKind = "gallery"
	PostKindVideo   PostKind = "video"
)

// MediaSource is a remote image or video referenced by a post.
type MediaSource struct {
	URL      string  `json:"url"`
	MIME     string  `json:"mime,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// PostContent is the kind-discriminated payload of a post.
type PostContent struct {
	Kind    PostKind      `json:"kind"`
	Text    string        `json:"text,omitempty"`
	Caption string        `json:"caption,omitempty"`
	Sources []MediaSource `json:"sources,omitempty"`
}

// Location is an optional place attached to a post or merchant.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Text      string  `json:"text,omitempty"`
}

// Post represents a post in a profile's feed.
type Post struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID  string      `gorm:"type:varchar(36);not null;index" json:"profileId"`
	Content    PostContent `gorm:"serializer:json;type:text;not null" json:"content"`
	Location   *Location   `gorm:"serializer:json;type:text" json:"location,omitempty"`
	Statistics Statistics  `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
	CreatedAt  time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a random id when none was supplied.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// MergeFrom shallow-merges the non-zero fields of incoming into p.
func (p Post) MergeFrom(incoming Post) Post {
	if incoming.ProfileID != "" {
		p.ProfileID = incoming.ProfileID
	}
	if incoming.Content.Kind != "" {
		p.Content = incoming.Content
	}
	if incoming.Location != nil {
		p.Location = incoming.Location
	}
	p.Statistics = incoming.Statistics
	if !incoming.CreatedAt.IsZero() {
		p.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		p.UpdatedAt = incoming.UpdatedAt
	}
	return p
}

// ApplyChanges applies an edit. Statistics are never touched by edits.
func (p Post) ApplyChanges(changes PostChanges) Post {
	if changes.Content != nil {
		p.Content = *changes.Content
	}
	if changes.Location != nil {
		p.Location = changes.Location
	}
	return p
}

// PostChanges is the editable subset of a post.
type PostChanges struct {
	Content  *PostContent `json:"content,omitempty"`
	Location *Location    `json:"location,omitempty"`
}

// NewerThan orders posts newest-first by creation time.
func (p Post) NewerThan(other Post) bool {
	return p.CreatedAt.After(other.CreatedAt)
}
