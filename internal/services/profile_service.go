package services

import (
	"errors"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
)

// PublicLink is the visitor-facing subset of a link row.
type PublicLink struct {
	ID       uint64 `json:"id"`
	LinkType string `json:"link_type"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

// PublicProfile is everything a visitor needs to render a page: the owner's
// display fields, the resolved theme and the visible links in display order.
type PublicProfile struct {
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Bio      string        `json:"bio"`
	ImageURL string        `json:"image_url"`
	Theme    ThemeDocument `json:"theme"`
	Links    []PublicLink  `json:"links"`
}

// ResolveProfile looks up a public page by username. Hidden links are
// excluded entirely; suspension does not hide the page.
func ResolveProfile(db *gorm.DB, username string) (*PublicProfile, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Profile not found")
		}
		return nil, types.Unexpected(err)
	}

	theme, err := GetTheme(db, user.ID)
	if err != nil {
		return nil, err
	}

	links := make([]PublicLink, 0)
	err = db.Model(&models.Link{}).
		Select("id, link_type, title, url, icon").
		Where("user_id = ? AND is_visible = ?", user.ID, true).
		Order("display_order ASC, created_at DESC").
		Scan(&links).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}

	return &PublicProfile{
		Name:     user.Name,
		Username: username,
		Bio:      user.Bio,
		ImageURL: user.ImageURL,
		Theme:    theme,
		Links:    links,
	}, nil
}
