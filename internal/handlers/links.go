package handlers

import (
	"strconv"

	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LinksHandler handles link routes
type LinksHandler struct {
	DB   *gorm.DB
	Sink services.ClickSink
}

// ListLinks handles GET /api/links
// @Summary List the signed-in user's links
// @Description Links ordered by display order, then newest first
// @Tags Links
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /links [get]
func (h *LinksHandler) ListLinks(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	links, err := services.ListLinks(h.DB, user.ID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"links": links})
}

type createLinkBody struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

// CreateLink handles POST /api/links
// @Summary Create a link
// @Description Appends the link to the end of the user's page
// @Tags Links
// @Accept json
// @Produce json
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /links [post]
func (h *LinksHandler) CreateLink(c *fiber.Ctx) error {
	var body createLinkBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	linkID, err := services.CreateLink(h.DB, user, services.CreateLinkInput{
		Type:  body.Type,
		Title: body.Title,
		URL:   body.URL,
		Icon:  body.Icon,
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Link created successfully",
		"ok":      true,
		"linkId":  linkID,
	})
}

type updateLinkBody struct {
	LinkID    types.FlexUint64 `json:"linkId"`
	Title     *string          `json:"title"`
	URL       *string          `json:"url"`
	IsVisible *types.FlexBool  `json:"isVisible"`
}

// UpdateLink handles PUT /api/links
// @Summary Update a link
// @Description Partially update title, url and/or visibility of an owned link
// @Tags Links
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /links [put]
func (h *LinksHandler) UpdateLink(c *fiber.Ctx) error {
	var body updateLinkBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if body.LinkID == 0 {
		return utils.ErrorResponse(c, "Link ID is required", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	upd := services.LinkUpdate{Title: body.Title, URL: body.URL}
	if body.IsVisible != nil {
		v := body.IsVisible.Bool()
		upd.IsVisible = &v
	}
	if err := services.UpdateLink(h.DB, user, body.LinkID.Uint64(), upd); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}

// DeleteLink handles DELETE /api/links?linkId=
// @Summary Delete a link
// @Description Deleting a missing or foreign link is a no-op
// @Tags Links
// @Produce json
// @Param linkId query int true "Link ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /links [delete]
func (h *LinksHandler) DeleteLink(c *fiber.Ctx) error {
	linkID, err := strconv.ParseUint(c.Query("linkId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Link ID is required", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	if err := services.DeleteLink(h.DB, user, linkID); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}

// ToggleVisibility handles PATCH /api/links/:linkId/toggle
// @Summary Toggle link visibility
// @Tags Links
// @Produce json
// @Param linkId path int true "Link ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /links/{linkId}/toggle [patch]
func (h *LinksHandler) ToggleVisibility(c *fiber.Ctx) error {
	linkID, err := strconv.ParseUint(c.Params("linkId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Link ID is required", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	visible, err := services.ToggleVisibility(h.DB, user, linkID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Success",
		"ok":        true,
		"isVisible": visible,
	})
}

type trackClickBody struct {
	LinkID types.FlexUint64 `json:"linkId"`
}

// TrackClick handles POST /api/track-click
// @Summary Record a click on a link
// @Description Increments the counter and best-effort logs click detail; unknown ids still succeed
// @Tags Links
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /track-click [post]
func (h *LinksHandler) TrackClick(c *fiber.Ctx) error {
	var body trackClickBody
	if err := c.BodyParser(&body); err != nil || body.LinkID == 0 {
		return utils.ErrorResponse(c, "Link ID is required", fiber.StatusBadRequest, "validation")
	}

	meta := services.ClickMeta{
		Referrer:  c.Get("Referer"),
		UserAgent: c.Get("User-Agent"),
		IPAddress: clientIP(c),
	}
	deviceType, err := services.RecordClick(h.DB, h.Sink, body.LinkID.Uint64(), meta)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "Click tracked successfully",
		"deviceType": deviceType,
	})
}
