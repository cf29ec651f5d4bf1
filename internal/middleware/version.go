package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// VersionMiddleware records the API version a client asks for through the
// X-Api-Version header. DevLink currently serves a single version, so the
// value is normalized and stashed for handlers rather than routed on.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Alias short form
		if version == "1.0" {
			version = "1.0.0"
		}

		c.Locals("apiVersion", version)

		return c.Next()
	}
}
