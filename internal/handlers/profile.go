package handlers

import (
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileHandler handles the public profile route
type ProfileHandler struct {
	DB *gorm.DB
}

// GetProfile handles GET /api/public-profile?username=
// @Summary Get a public profile
// @Description Returns the page owner's display fields, resolved theme and visible links
// @Tags Profile
// @Produce json
// @Param username query string true "Profile username"
// @Success 200 {object} services.PublicProfile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /public-profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return utils.ErrorResponse(c, "Username is required", fiber.StatusBadRequest, "validation")
	}

	profile, err := services.ResolveProfile(h.DB, username)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}
