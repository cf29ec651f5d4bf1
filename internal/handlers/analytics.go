package handlers

import (
	"fmt"
	"time"

	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AnalyticsHandler handles the signed-in user's analytics routes
type AnalyticsHandler struct {
	DB *gorm.DB
}

// GetAnalytics handles GET /api/analytics
// @Summary Get the signed-in user's analytics
// @Description Aggregates link and click data over a lookback window (days, or startDate/endDate)
// @Tags Analytics
// @Produce json
// @Param days query int false "Lookback window in days (default 30)"
// @Param startDate query string false "Explicit window start (YYYY-MM-DD)"
// @Param endDate query string false "Explicit window end (YYYY-MM-DD)"
// @Success 200 {object} services.UserAnalytics
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	analytics, err := services.GetUserAnalytics(h.DB, user, parseWindow(c))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(analytics)
}

// ExportAnalytics handles GET /api/analytics/export?format=
// @Summary Export the signed-in user's analytics
// @Description Full export as a JSON attachment, or CSV with ?format=csv
// @Tags Analytics
// @Produce json
// @Produce text/csv
// @Param format query string false "json (default) or csv"
// @Success 200 {object} services.ExportData
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /analytics/export [get]
func (h *AnalyticsHandler) ExportAnalytics(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	export, err := services.GetExport(h.DB, user)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	name := ""
	if user.Username != nil {
		name = *user.Username
	}
	filename := fmt.Sprintf("%s-analytics-%d", name, time.Now().UnixMilli())

	if c.Query("format", "json") == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		return c.Status(fiber.StatusOK).SendString(export.CSV())
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".json"))
	return c.Status(fiber.StatusOK).JSON(export)
}
