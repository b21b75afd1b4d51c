package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileKind distinguishes personal profiles from vendor profiles.
type ProfileKind string

const (
	ProfileKindPersonal ProfileKind = "personal"
	ProfileKindVendor   ProfileKind = "vendor"
)

// Profile is a user-facing identity. Followers and Following are denormalized
// from the follows table and must stay symmetric across profiles.
type Profile struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Kind        ProfileKind `gorm:"type:varchar(16);not null;default:'personal'" json:"kind"`
	DisplayName string      `gorm:"not null" json:"displayName"`
	Username    string      `gorm:"uniqueIndex" json:"username,omitempty"`
	Email       string      `gorm:"index" json:"email,omitempty"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	Biography   string      `gorm:"type:text" json:"biography,omitempty"`
	// FCMRegistrationToken is the device push token registered for this profile.
	FCMRegistrationToken string    `gorm:"column:fcm_registration_token" json:"-"`
	Followers            []string  `gorm:"-" json:"followers"`
	Following            []string  `gorm:"-" json:"following"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate assigns a random id when none was supplied.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Kind == "" {
		p.Kind = ProfileKindPersonal
	}
	return nil
}

// MergeFrom shallow-merges the non-zero fields of incoming into p.
func (p Profile) MergeFrom(incoming Profile) Profile {
	if incoming.Kind != "" {
		p.Kind = incoming.Kind
	}
	if incoming.DisplayName != "" {
		p.DisplayName = incoming.DisplayName
	}
	if incoming.Username != "" {
		p.Username = incoming.Username
	}
	if incoming.Email != "" {
		p.Email = incoming.Email
	}
	if incoming.AvatarURL != "" {
		p.AvatarURL = incoming.AvatarURL
	}
	if incoming.Biography != "" {
		p.Biography = incoming.Biography
	}
	if incoming.Followers != nil {
		p.Followers = slices.Clone(incoming.Followers)
	}
	if incoming.Following != nil {
		p.Following = slices.Clone(incoming.Following)
	}
	if !incoming.CreatedAt.IsZero() {
		p.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		p.UpdatedAt = incoming.UpdatedAt
	}
	return p
}

// ApplyChanges applies a profile edit.
func (p Profile) ApplyChanges(changes ProfileChanges) Profile {
	if changes.DisplayName != nil {
		p.DisplayName = *changes.DisplayName
	}
	if changes.Username != nil {
		p.Username = *changes.Username
	}
	if changes.AvatarURL != nil {
		p.AvatarURL = *changes.AvatarURL
	}
	if changes.Biography != nil {
		p.Biography = *changes.Biography
	}
	return p
}

// ProfileChanges is the editable subset of a profile.
type ProfileChanges struct {
	DisplayName *string `json:"displayName,omitempty"`
	Username    *string `json:"username,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Biography   *string `json:"biography,omitempty"`
}

// Follow records that FollowerID follows FolloweeID.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(36)" json:"followerId"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(36);index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
