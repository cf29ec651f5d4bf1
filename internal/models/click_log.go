package models

import (
	"time"
)

// ClickLog is a best-effort detail row written alongside the click counter
// increment. The table is provisioned by ops DDL, not by AutoMigrate; the
// service runs fine without it.
type ClickLog struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	LinkID     uint64 `gorm:"not null;index" json:"link_id"`
	UserID     uint64 `gorm:"not null;index" json:"user_id"`
	Referrer   string `gorm:"size:512" json:"referrer"`
	UserAgent  string `gorm:"column:user_agent;size:512" json:"user_agent"`
	IPAddress  string `gorm:"column:ip_address;size:64" json:"ip_address"`
	DeviceType string `gorm:"column:device_type;size:16" json:"device_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for ClickLog
func (ClickLog) TableName() string {
	return "clicks_log"
}
