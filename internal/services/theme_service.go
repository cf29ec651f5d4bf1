package services

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
)

// ThemeDocument is the full set of visual customization fields for one
// user's public page. All six fields are always present in storage.
type ThemeDocument struct {
	BackgroundType  string `json:"background_type"`
	BackgroundValue string `json:"background_value"`
	ButtonStyle     string `json:"button_style"`
	ButtonColor     string `json:"button_color"`
	ButtonTextColor string `json:"button_text_color"`
	FontFamily      string `json:"font_family"`
}

// DefaultTheme is what every profile renders with until a theme is saved.
func DefaultTheme() ThemeDocument {
	return ThemeDocument{
		BackgroundType:  "color",
		BackgroundValue: "#ffffff",
		ButtonStyle:     "fill",
		ButtonColor:     "#000000",
		ButtonTextColor: "#ffffff",
		FontFamily:      "Inter",
	}
}

// withDefaults fills any empty field with its default.
func (t ThemeDocument) withDefaults() ThemeDocument {
	def := DefaultTheme()
	if t.BackgroundType == "" {
		t.BackgroundType = def.BackgroundType
	}
	if t.BackgroundValue == "" {
		t.BackgroundValue = def.BackgroundValue
	}
	if t.ButtonStyle == "" {
		t.ButtonStyle = def.ButtonStyle
	}
	if t.ButtonColor == "" {
		t.ButtonColor = def.ButtonColor
	}
	if t.ButtonTextColor == "" {
		t.ButtonTextColor = def.ButtonTextColor
	}
	if t.FontFamily == "" {
		t.FontFamily = def.FontFamily
	}
	return t
}

// GetTheme returns the user's stored theme document, or the default document
// if none exists. A stored document that fails to parse also yields the
// default rather than an error.
func GetTheme(db *gorm.DB, userID uint64) (ThemeDocument, error) {
	var row models.UserTheme
	err := db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultTheme(), nil
		}
		return DefaultTheme(), types.Unexpected(err)
	}

	return parseThemeData(row.ThemeData), nil
}

// SetTheme upserts the user's theme document. Missing input fields take the
// same defaults GetTheme reports; last write wins.
func SetTheme(db *gorm.DB, user *models.User, doc ThemeDocument) error {
	if err := requireActive(user); err != nil {
		return err
	}

	data, err := json.Marshal(doc.withDefaults())
	if err != nil {
		return types.Unexpected(err)
	}

	var existing models.UserTheme
	err = db.Where("user_id = ?", user.ID).First(&existing).Error
	switch {
	case err == nil:
		err = db.Model(&existing).
			Updates(map[string]interface{}{"theme_data": data, "theme_name": "custom"}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = db.Create(&models.UserTheme{
			UserID:    user.ID,
			ThemeName: "custom",
			ThemeData: data,
		}).Error
	}
	if err != nil {
		return types.Unexpected(err)
	}
	return nil
}

func parseThemeData(data []byte) ThemeDocument {
	if len(data) == 0 {
		return DefaultTheme()
	}
	var doc ThemeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("failed to parse theme document: %v", err)
		return DefaultTheme()
	}
	return doc.withDefaults()
}
