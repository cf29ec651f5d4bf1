package handlers

import (
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles account routes
type UserHandler struct {
	DB *gorm.DB
}

// GetUser handles GET /api/user
// @Summary Get the signed-in user
// @Description Get the account record for the session's identity
// @Tags User
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}

type syncUserBody struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Username *string `json:"username"`
	ImageURL string  `json:"imageUrl"`
	Provider string  `json:"provider"`
}

// SyncUser handles POST /api/user
// @Summary Sync the signed-in user
// @Description Create the account record on first sign-in; idempotent for known identities
// @Tags User
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user [post]
func (h *UserHandler) SyncUser(c *fiber.Ctx) error {
	var body syncUserBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	email := body.Email
	if email == "" {
		email = authEmail(c)
	}

	user, err := services.SyncUser(h.DB, services.SyncUserInput{
		Subject:  authSubject(c),
		Email:    email,
		Name:     body.Name,
		Username: body.Username,
		ImageURL: body.ImageURL,
		Provider: body.Provider,
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, fiber.Map{"user": user})
}

type updateProfileBody struct {
	Username *string `json:"username"`
	ImageURL *string `json:"imageUrl"`
}

// UpdateProfile handles PUT /api/user
// @Summary Update the signed-in user's profile
// @Description Partially update username and/or profile image
// @Tags User
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var body updateProfileBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	err = services.UpdateProfile(h.DB, user, services.ProfileUpdate{
		Username: body.Username,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}

// GetBio handles GET /api/bio
// @Summary Get the signed-in user's bio
// @Tags User
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /bio [get]
func (h *UserHandler) GetBio(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"bio": user.Bio})
}

type updateBioBody struct {
	Bio string `json:"bio"`
}

// UpdateBio handles PUT /api/bio
// @Summary Update the signed-in user's bio
// @Description Replace the bio; empty clears it, max 80 characters
// @Tags User
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /bio [put]
func (h *UserHandler) UpdateBio(c *fiber.Ctx) error {
	var body updateBioBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}

	user, err := currentUser(c, h.DB)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	if err := services.UpdateBio(h.DB, user, body.Bio); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, nil)
}

type checkUsernameBody struct {
	Username string `json:"username"`
}

// CheckUsername handles POST /api/check-username
// @Summary Check username availability
// @Tags User
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /check-username [post]
func (h *UserHandler) CheckUsername(c *fiber.Ctx) error {
	var body checkUsernameBody
	if err := c.BodyParser(&body); err != nil || body.Username == "" {
		return utils.ErrorResponse(c, "Username is required", fiber.StatusBadRequest, "validation")
	}

	available, err := services.CheckUsername(h.DB, body.Username)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"available": available})
}

// CheckSuspended handles GET /api/user/check-suspended
// @Summary Check suspension status
// @Description Reports whether the signed-in account is suspended; unknown identities read as not suspended
// @Tags User
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /user/check-suspended [get]
func (h *UserHandler) CheckSuspended(c *fiber.Ctx) error {
	suspended, err := services.IsSuspended(h.DB, authSubject(c))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"isSuspended": suspended})
}
