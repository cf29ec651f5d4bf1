package services

import (
	"errors"
	"strings"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
)

// SyncUserInput is the first-sign-in payload from the identity provider.
type SyncUserInput struct {
	Subject  string
	Email    string
	Name     string
	Username *string
	ImageURL string
	Provider string
}

// ProfileUpdate is a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	Username *string
	ImageURL *string
}

// ResolveUser maps an identity provider subject to the internal user row.
func ResolveUser(db *gorm.DB, subject string) (*models.User, error) {
	var user models.User
	err := db.Where("auth_subject = ?", subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User not found")
		}
		return nil, types.Unexpected(err)
	}
	return &user, nil
}

// SyncUser creates the user row on first sign-in. Syncing an already-known
// subject is a no-op returning the existing row; a new subject asking for a
// username someone else holds is rejected without creating the account.
func SyncUser(db *gorm.DB, in SyncUserInput) (*models.User, error) {
	if in.Subject == "" || in.Email == "" {
		return nil, types.Validation("Subject and email are required")
	}

	user := models.User{
		AuthSubject: in.Subject,
		Email:       in.Email,
		Name:        in.Name,
		Username:    in.Username,
		ImageURL:    in.ImageURL,
		Provider:    in.Provider,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, resolveErr := ResolveUser(db, in.Subject)
			if resolveErr == nil {
				return existing, nil
			}
			// The subject is new, so the conflict came from the username
			// index: a first sign-in asked for a name someone else holds.
			var appErr *types.AppError
			if errors.As(resolveErr, &appErr) && appErr.Code == 404 {
				return nil, types.Validation("Username is already taken")
			}
			return nil, resolveErr
		}
		return nil, types.Unexpected(err)
	}
	return &user, nil
}

// CheckUsername reports whether username is free. The check and the claim
// write both go through the users.username unique index, so a race between
// them loses at the write, not silently.
func CheckUsername(db *gorm.DB, username string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, types.Unexpected(err)
	}
	return count == 0, nil
}

// UpdateProfile applies a partial profile update. A username claim that loses
// the race to the unique index comes back as a validation error.
func UpdateProfile(db *gorm.DB, user *models.User, upd ProfileUpdate) error {
	if err := requireActive(user); err != nil {
		return err
	}

	updates := make(map[string]interface{})

	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return types.Validation("Username cannot be empty")
		}
		taken, err := isUsernameTaken(db, username, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return types.Validation("Username is already taken")
		}
		updates["username"] = username
	}

	if upd.ImageURL != nil {
		// Empty string clears the image
		if *upd.ImageURL == "" {
			updates["image_url"] = nil
		} else {
			updates["image_url"] = *upd.ImageURL
		}
	}

	if len(updates) == 0 {
		return types.Validation("No fields to update")
	}

	err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.Validation("Username is already taken")
		}
		return types.Unexpected(err)
	}
	return nil
}

// UpdateBio replaces the user's bio. An empty bio clears it.
func UpdateBio(db *gorm.DB, user *models.User, bio string) error {
	if err := requireActive(user); err != nil {
		return err
	}
	if len(bio) > 80 {
		return types.Validation("Bio must be 80 characters or less")
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("bio", bio).Error; err != nil {
		return types.Unexpected(err)
	}
	return nil
}

// IsSuspended probes the suspension flag; unknown subjects read as not
// suspended, matching the surrounding session layer's expectations.
func IsSuspended(db *gorm.DB, subject string) (bool, error) {
	var user models.User
	err := db.Select("is_suspended").Where("auth_subject = ?", subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, types.Unexpected(err)
	}
	return user.IsSuspended, nil
}

// requireActive gates every write performed on a user's behalf. Suspended
// users keep their data but all writes are refused.
func requireActive(user *models.User) error {
	if user == nil {
		return types.Unauthorized("No resolvable identity")
	}
	if user.IsSuspended {
		return types.Forbidden("Account is suspended")
	}
	return nil
}

func isUsernameTaken(db *gorm.DB, username string, excludeUserID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, excludeUserID).
		Count(&count).Error
	if err != nil {
		return false, types.Unexpected(err)
	}
	return count > 0, nil
}
