package models

import (
	"time"
)

// User is an account row created on first sign-in through the identity
// provider. AuthSubject is the provider's subject id; Username stays NULL
// until the user claims one.
type User struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthSubject string  `gorm:"column:auth_subject;type:char(64);not null;uniqueIndex" json:"auth_subject"`
	Email       string  `gorm:"size:255;not null" json:"email"`
	Name        string  `gorm:"size:255" json:"name"`
	Username    *string `gorm:"size:255;uniqueIndex" json:"username"`
	Bio         string  `gorm:"size:80" json:"bio"`
	ImageURL    string  `gorm:"column:image_url;size:512" json:"image_url"`
	Provider    string  `gorm:"size:64" json:"provider"`
	IsSuspended bool    `gorm:"not null;default:false" json:"is_suspended"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Links []Link     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Theme *UserTheme `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
