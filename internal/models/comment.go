package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a comment on a post. A comment with a ParentID is a reply.
type Comment struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID     string     `gorm:"type:varchar(36);not null;index" json:"postId"`
	ParentID   *string    `gorm:"type:varchar(36);index" json:"parentId,omitempty"`
	ProfileID  string     `gorm:"type:varchar(36);not null" json:"profileId"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Statistics Statistics `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a random id when none was supplied.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// MergeFrom shallow-merges the non-zero fields of incoming into c.
func (c Comment) MergeFrom(incoming Comment) Comment {
	if incoming.PostID != "" {
		c.PostID = incoming.PostID
	}
	if incoming.ParentID != nil {
		c.ParentID = incoming.ParentID
	}
	if incoming.ProfileID != "" {
		c.ProfileID = incoming.ProfileID
	}
	if incoming.Message != "" {
		c.Message = incoming.Message
	}
	c.Statistics = incoming.Statistics
	if !incoming.CreatedAt.IsZero() {
		c.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		c.UpdatedAt = incoming.UpdatedAt
	}
	return c
}

// ApplyChanges applies an edit to the comment body.
func (c Comment) ApplyChanges(changes CommentChanges) Comment {
	if changes.Message != nil {
		c.Message = *changes.Message
	}
	return c
}

// CommentChanges is the editable subset of a comment.
type CommentChanges struct {
	Message *string `json:"message,omitempty"`
}

// Reply is a comment answering another comment. Replies live in their own
// client store, so they get a distinct type.
type Reply Comment

// MergeFrom shallow-merges the non-zero fields of incoming into r.
func (r Reply) MergeFrom(incoming Reply) Reply {
	return Reply(Comment(r).MergeFrom(Comment(incoming)))
}

// ApplyChanges applies an edit to the reply body.
func (r Reply) ApplyChanges(changes CommentChanges) Reply {
	return Reply(Comment(r).ApplyChanges(changes))
}

// TableName stores replies alongside top-level comments.
func (Reply) TableName() string {
	return "comments"
}
