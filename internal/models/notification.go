package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a push message delivered to a profile.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID string    `gorm:"type:varchar(36);not null;index" json:"profileId,omitempty"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a random id when none was supplied.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// MergeFrom shallow-merges the non-zero fields of incoming into n.
// Read is sticky: once read locally it stays read.
func (n Notification) MergeFrom(incoming Notification) Notification {
	if incoming.ProfileID != "" {
		n.ProfileID = incoming.ProfileID
	}
	if incoming.Title != "" {
		n.Title = incoming.Title
	}
	if incoming.Message != "" {
		n.Message = incoming.Message
	}
	n.Read = n.Read || incoming.Read
	if !incoming.CreatedAt.IsZero() {
		n.CreatedAt = incoming.CreatedAt
	}
	return n
}
