package handlers

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeHandler handles profile QR code generation
type QRCodeHandler struct {
	Cfg *config.Config
}

// GetQRCode handles GET /api/qrcode?username=&size=
// @Summary Generate a QR code for a profile URL
// @Description Returns the profile URL and its QR code as a base64 PNG data URL
// @Tags Profile
// @Produce json
// @Param username query string true "Profile username"
// @Param size query int false "Image size in pixels (default 300)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /qrcode [get]
func (h *QRCodeHandler) GetQRCode(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return utils.ErrorResponse(c, "Username is required", fiber.StatusBadRequest, "validation")
	}

	size, err := strconv.Atoi(c.Query("size", "300"))
	if err != nil || size <= 0 {
		size = 300
	}

	profileURL := fmt.Sprintf("%s/%s", strings.TrimRight(h.Cfg.AppURL, "/"), username)

	png, err := qrcode.Encode(profileURL, qrcode.Medium, size)
	if err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Error generating QR code: %v", err),
			fiber.StatusInternalServerError, "unexpected")
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"qrCode":     dataURL,
		"profileUrl": profileURL,
	})
}
