package models

import "time"

// Statistics is the engagement sub-record shared by posts, comments, products and merchants.
// DidLike is relative to the requesting profile and is computed at query time.
type Statistics struct {
	DidLike    bool       `gorm:"->;-:migration" json:"didLike"`
	TotalLikes uint       `gorm:"not null;default:0" json:"totalLikes"`
	TotalViews *uint      `json:"totalViews,omitempty"`
	LastViewed *time.Time `json:"lastViewed,omitempty"`
}
