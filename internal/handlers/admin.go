package handlers

import (
	"strconv"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler handles privileged routes. All routes sit behind the admin
// auth middleware; the handlers assume the email gate already passed.
type AdminHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Check handles GET /api/admin/check
// @Summary Confirm admin access
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/check [get]
func (h *AdminHandler) Check(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"isAdmin": true,
		"email":   authEmail(c),
	})
}

// Stats handles GET /api/admin/stats
// @Summary Get cross-user totals
// @Tags Admin
// @Produce json
// @Success 200 {object} services.AdminStats
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.GetAdminStats(h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// Analytics handles GET /api/admin/analytics
// @Summary Get cross-user analytics
// @Description Population-wide aggregates plus a zero-filled 60-day click calendar
// @Tags Admin
// @Produce json
// @Param days query int false "Lookback window in days (default 30)"
// @Success 200 {object} services.AdminAnalytics
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	analytics, err := services.GetAdminAnalytics(h.DB, parseDays(c))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(analytics)
}

// Users handles GET /api/admin/users
// @Summary List all users
// @Description Every account with per-user link and click totals, newest first
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/users [get]
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": users})
}

type suspendBody struct {
	Suspended types.FlexBool `json:"suspended"`
}

// Suspend handles PATCH /api/admin/users/:userId/suspend
// @Summary Set a user's suspension flag
// @Tags Admin
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/users/{userId}/suspend [patch]
func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "User ID is required", fiber.StatusBadRequest, "validation")
	}

	var body suspendBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	if err := services.SetSuspended(h.DB, userID, body.Suspended.Bool()); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	message := "User activated successfully"
	if body.Suspended.Bool() {
		message = "User suspended successfully"
	}
	return utils.MutationSuccessResponse(c, fiber.Map{"message": message})
}

// DeleteUser handles DELETE /api/admin/users/:userId
// @Summary Delete a user
// @Description Removes the account; links and theme go with it via cascade
// @Tags Admin
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "User ID is required", fiber.StatusBadRequest, "validation")
	}

	if err := services.DeleteUser(h.DB, userID); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}
