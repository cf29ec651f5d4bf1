package handlers

import (
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ThemeHandler handles theme routes
type ThemeHandler struct {
	DB *gorm.DB
}

// GetTheme handles GET /api/theme
// @Summary Get the signed-in user's theme
// @Description Returns the stored theme document, or the default when none is saved
// @Tags Theme
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /theme [get]
func (h *ThemeHandler) GetTheme(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	theme, err := services.GetTheme(h.DB, user.ID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"theme": theme})
}

// UpdateTheme handles PUT /api/theme
// @Summary Save the signed-in user's theme
// @Description Upserts the theme document; missing fields take defaults, last write wins
// @Tags Theme
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /theme [put]
func (h *ThemeHandler) UpdateTheme(c *fiber.Ctx) error {
	var doc services.ThemeDocument
	if err := c.BodyParser(&doc); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	if err := services.SetTheme(h.DB, user, doc); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}
