package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserTheme stores one serialized theme document per user. Only the current
// state is kept; every write replaces ThemeData wholesale.
type UserTheme struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64         `gorm:"not null;uniqueIndex" json:"user_id"`
	ThemeName string         `gorm:"size:64;not null;default:custom" json:"theme_name"`
	ThemeData datatypes.JSON `gorm:"type:json" json:"theme_data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName overrides the table name for UserTheme
func (UserTheme) TableName() string {
	return "user_themes"
}
