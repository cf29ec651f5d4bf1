package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
)

// CreateLinkInput carries the add-link fields. Type and Icon are optional.
type CreateLinkInput struct {
	Type  string
	Title string
	URL   string
	Icon  string
}

// LinkUpdate is a partial link update; nil fields are left untouched.
type LinkUpdate struct {
	Title     *string
	URL       *string
	IsVisible *bool
}

// ClickMeta is the request metadata recorded with a click.
type ClickMeta struct {
	Referrer  string
	UserAgent string
	IPAddress string
}

var (
	tabletRegexp = regexp.MustCompile(`tablet|ipad|playbook|silk`)
	mobileRegexp = regexp.MustCompile(`Mobile|Android|iP(hone|od)|IEMobile|BlackBerry|Kindle|Silk-Accelerated|(hpw|web)OS|Opera M(obi|ini)`)
)

// ListLinks returns all of a user's links ordered for rendering.
func ListLinks(db *gorm.DB, userID uint64) ([]models.Link, error) {
	links := make([]models.Link, 0)
	err := db.Where("user_id = ?", userID).
		Order("display_order ASC, created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	return links, nil
}

// CreateLink adds a link at the end of the user's page (max display order + 1,
// starting at 1) and returns the new link id.
func CreateLink(db *gorm.DB, user *models.User, in CreateLinkInput) (uint64, error) {
	if err := requireActive(user); err != nil {
		return 0, err
	}
	if in.Title == "" || in.URL == "" {
		return 0, types.Validation("Title and URL are required")
	}

	linkType := in.Type
	if linkType == "" {
		linkType = models.LinkTypeProject
	}
	if linkType != models.LinkTypeSocial && linkType != models.LinkTypeProject {
		return 0, types.Validation("Link type must be social or project")
	}
	icon := in.Icon
	if icon == "" {
		icon = models.DefaultIcon
	}

	var maxOrder int
	err := db.Model(&models.Link{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, types.Unexpected(err)
	}

	link := models.Link{
		UserID:       user.ID,
		LinkType:     linkType,
		Title:        in.Title,
		URL:          in.URL,
		Icon:         icon,
		IsVisible:    true,
		DisplayOrder: maxOrder + 1,
	}
	if err := db.Create(&link).Error; err != nil {
		return 0, types.Unexpected(err)
	}
	return link.ID, nil
}

// UpdateLink applies a partial update to a link owned by user. Updating a
// link that does not exist or belongs to someone else affects zero rows and
// is a silent no-op.
func UpdateLink(db *gorm.DB, user *models.User, linkID uint64, upd LinkUpdate) error {
	if err := requireActive(user); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.URL != nil {
		updates["url"] = *upd.URL
	}
	if upd.IsVisible != nil {
		updates["is_visible"] = *upd.IsVisible
	}
	if len(updates) == 0 {
		return types.Validation("No fields to update")
	}

	err := db.Model(&models.Link{}).
		Where("id = ? AND user_id = ?", linkID, user.ID).
		Updates(updates).Error
	if err != nil {
		return types.Unexpected(err)
	}
	return nil
}

// DeleteLink removes a link owned by user. Deleting a missing or foreign link
// is a no-op, not an error.
func DeleteLink(db *gorm.DB, user *models.User, linkID uint64) error {
	if err := requireActive(user); err != nil {
		return err
	}
	err := db.Where("id = ? AND user_id = ?", linkID, user.ID).
		Delete(&models.Link{}).Error
	if err != nil {
		return types.Unexpected(err)
	}
	return nil
}

// ToggleVisibility flips the visibility flag and returns the new value.
// Read-then-write: two concurrent toggles can land on the same final state.
func ToggleVisibility(db *gorm.DB, user *models.User, linkID uint64) (bool, error) {
	if err := requireActive(user); err != nil {
		return false, err
	}

	var link models.Link
	err := db.Where("id = ? AND user_id = ?", linkID, user.ID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, types.NotFound("Link not found")
		}
		return false, types.Unexpected(err)
	}

	newValue := !link.IsVisible
	err = db.Model(&models.Link{}).Where("id = ?", link.ID).
		Update("is_visible", newValue).Error
	if err != nil {
		return false, types.Unexpected(err)
	}
	return newValue, nil
}

// RecordClick increments the link's click counter by exactly one. An unknown
// linkId updates zero rows and still reports success. The detail row goes to
// the sink best-effort; sink failures never surface.
func RecordClick(db *gorm.DB, sink ClickSink, linkID uint64, meta ClickMeta) (string, error) {
	err := db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Update("clicks", gorm.Expr("clicks + ?", 1)).Error
	if err != nil {
		return "", types.Unexpected(err)
	}

	deviceType := ClassifyDevice(meta.UserAgent)

	var link models.Link
	if err := db.Select("user_id").Where("id = ?", linkID).First(&link).Error; err == nil {
		sink.Record(models.ClickLog{
			LinkID:     linkID,
			UserID:     link.UserID,
			Referrer:   meta.Referrer,
			UserAgent:  meta.UserAgent,
			IPAddress:  meta.IPAddress,
			DeviceType: deviceType,
		})
	}

	return deviceType, nil
}

// ClassifyDevice buckets a user agent as tablet, mobile or desktop, checked
// in that order. Android without "mobi" counts as a tablet.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if tabletRegexp.MatchString(ua) ||
		(strings.Contains(ua, "android") && !strings.Contains(ua, "mobi")) {
		return "tablet"
	}
	if mobileRegexp.MatchString(userAgent) {
		return "mobile"
	}
	return "desktop"
}
