package middleware

import (
	"fmt"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"
	"github.com/gofiber/fiber/v2"
)

// RequireUser validates the session cookie and stores the session's subject
// and email in the request context.
func RequireUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, cfg, false)
	}
}

// RequireAdmin validates the session cookie and additionally requires the
// session email to match the configured administrator.
func RequireAdmin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, cfg, true)
	}
}

// authorize performs the authorization check. The Authorizer client is
// initialized lazily from the first authenticated request, which supplies the
// redirect URL scheme and host the client needs.
func authorize(c *fiber.Ctx, cfg *config.Config, admin bool) error {
	if !services.IsAuthorizerInitialized() {
		if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
			return types.Unexpected(fmt.Errorf("authorizer init failed: %w", err))
		}
	}

	session := c.Cookies("cookie_session")
	if session == "" {
		return types.Unauthorized("Authorizer cookie \"cookie_session\" not found")
	}

	user, err := services.ValidateSession(session, []string{"user"})
	if err != nil {
		return types.Unauthorized(fmt.Sprintf("Invalid session: %v", err))
	}

	if admin && !services.IsAdminEmail(cfg, user.Email) {
		return types.Forbidden("Admin access required")
	}

	c.Locals("authSubject", user.ID)
	c.Locals("authEmail", user.Email)

	return c.Next()
}
