package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is an item sold by a merchant.
type Product struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MerchantID  string     `gorm:"type:varchar(36);not null;index" json:"merchantId"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	PriceCents  int64      `json:"priceCents"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Statistics  Statistics `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns a random id when none was supplied.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// MergeFrom shallow-merges the non-zero fields of incoming into p.
func (p Product) MergeFrom(incoming Product) Product {
	if incoming.MerchantID != "" {
		p.MerchantID = incoming.MerchantID
	}
	if incoming.Name != "" {
		p.Name = incoming.Name
	}
	if incoming.Description != "" {
		p.Description = incoming.Description
	}
	if incoming.PriceCents != 0 {
		p.PriceCents = incoming.PriceCents
	}
	if incoming.ImageURL != "" {
		p.ImageURL = incoming.ImageURL
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
