package services

import (
	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
)

// AdminUserRow is one row of the admin user listing, a user joined with
// aggregate link activity.
type AdminUserRow struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Username    *string `json:"username"`
	Provider    string  `json:"provider"`
	IsSuspended bool    `json:"is_suspended"`
	CreatedAt   string  `json:"created_at"`
	LinkCount   int64   `json:"link_count"`
	TotalClicks int64   `json:"total_clicks"`
}

// ListUsers returns every account, newest first, with per-user link and
// click totals.
func ListUsers(db *gorm.DB) ([]AdminUserRow, error) {
	rows := make([]AdminUserRow, 0)
	err := db.Clauses(adminQueryHint).
		Table("users u").
		Select(`u.id, u.email, u.name, u.username, u.provider, u.is_suspended,
			u.created_at,
			COUNT(DISTINCT l.id) AS link_count,
			COALESCE(SUM(l.clicks), 0) AS total_clicks`).
		Joins("LEFT JOIN links l ON l.user_id = u.id").
		Group("u.id, u.email, u.name, u.username, u.provider, u.is_suspended, u.created_at").
		Order("u.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	return rows, nil
}

// SetSuspended sets or clears a user's suspension flag. An unknown id
// updates zero rows and is a silent no-op.
func SetSuspended(db *gorm.DB, userID uint64, suspended bool) error {
	err := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_suspended", suspended).Error
	if err != nil {
		return types.Unexpected(err)
	}
	return nil
}

// DeleteUser removes an account. Links and theme rows go with it through the
// foreign key cascade. Deleting an unknown id is a silent no-op.
func DeleteUser(db *gorm.DB, userID uint64) error {
	if err := db.Delete(&models.User{}, userID).Error; err != nil {
		return types.Unexpected(err)
	}
	return nil
}
