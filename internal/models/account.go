package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account holds sign-in credentials for a profile.
type Account struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ProfileID    string    `gorm:"type:varchar(36);not null" json:"profileId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a random id when none was supplied.
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// User is the signed-in identity held by the auth store.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ProfileID string `json:"profileId"`
}

// User returns the public identity of the account.
func (a Account) User() User {
	return User{ID: a.ID, Email: a.Email, ProfileID: a.ProfileID}
}

// SubjectKind names the entity type a like targets.
type SubjectKind string

const (
	SubjectPost     SubjectKind = "post"
	SubjectComment  SubjectKind = "comment"
	SubjectProduct  SubjectKind = "product"
	SubjectMerchant SubjectKind = "merchant"
)

// Like records that a profile liked a subject.
type Like struct {
	ProfileID   string      `gorm:"primaryKey;type:varchar(36)" json:"profileId"`
	SubjectKind SubjectKind `gorm:"primaryKey;type:varchar(16)" json:"subjectKind"`
	SubjectID   string      `gorm:"primaryKey;type:varchar(36);index" json:"subjectId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// Session is an issued sign-in token. Deleting the row revokes the token.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	AccountID string    `gorm:"type:varchar(36);not null;index" json:"accountId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Session) TableName() string {
	return "sessions"
}
