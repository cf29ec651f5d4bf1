package models

import (
	"time"
)

// Link types. Anything else is rejected at the handler boundary.
const (
	LinkTypeSocial  = "social"
	LinkTypeProject = "project"
)

// DefaultIcon is the generic link icon key used when a client omits one.
const DefaultIcon = "FaLink"

// Link is one entry on a user's public page. DisplayOrder is user-controlled
// and not renumbered on deletion; Clicks only ever increases.
type Link struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64 `gorm:"not null;index" json:"user_id"`
	LinkType     string `gorm:"column:link_type;size:16;not null;default:project" json:"link_type"`
	Title        string `gorm:"size:255;not null" json:"title"`
	URL          string `gorm:"column:url;size:2048;not null" json:"url"`
	Icon         string `gorm:"size:64;not null;default:FaLink" json:"icon"`
	IsVisible    bool   `gorm:"not null;default:true" json:"is_visible"`
	Clicks       uint64 `gorm:"not null;default:0" json:"clicks"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name for Link
func (Link) TableName() string {
	return "links"
}
