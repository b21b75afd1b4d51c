package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Merchant is a vendor storefront listing products.
type Merchant struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ShortName   string     `gorm:"not null" json:"shortName"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Address     *Location  `gorm:"serializer:json;type:text" json:"address,omitempty"`
	Statistics  Statistics `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Merchant) TableName() string {
	return "merchants"
}

// BeforeCreate assigns a random id when none was supplied.
func (m *Merchant) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MergeFrom shallow-merges the non-zero fields of incoming into m.
func (m Merchant) MergeFrom(incoming Merchant) Merchant {
	if incoming.ShortName != "" {
		m.ShortName = incoming.ShortName
	}
	if incoming.Description != "" {
		m.Description = incoming.Description
	}
	if incoming.ImageURL != "" {
		m.ImageURL = incoming.ImageURL
	}
	if incoming.Address != nil {
		m.Address = incoming.Address
	}
	m.Statistics = incoming.Statistics
	if !incoming.CreatedAt.IsZero() {
		m.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		m.UpdatedAt = incoming.UpdatedAt
	}
	return m
}
