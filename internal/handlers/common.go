package handlers

import (
	"strconv"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// authSubject returns the identity provider subject the auth middleware
// stored for this request.
func authSubject(c *fiber.Ctx) string {
	if v, ok := c.Locals("authSubject").(string); ok {
		return v
	}
	return ""
}

// authEmail returns the session email the auth middleware stored.
func authEmail(c *fiber.Ctx) string {
	if v, ok := c.Locals("authEmail").(string); ok {
		return v
	}
	return ""
}

// currentUser resolves the request's session subject to the internal user
// row. Only valid behind the auth middleware.
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	subject := authSubject(c)
	if subject == "" {
		return nil, types.Unauthorized("No resolvable identity")
	}
	return services.ResolveUser(db, subject)
}

// parseWindow reads the analytics lookback from the query string: an
// explicit startDate/endDate pair wins, otherwise days (default 30).
func parseWindow(c *fiber.Ctx) services.Window {
	const layout = "2006-01-02"
	start := c.Query("startDate")
	end := c.Query("endDate")
	if start != "" && end != "" {
		if w, ok := services.WindowFromDates(layout, start, end); ok {
			return w
		}
	}
	return services.WindowFromDays(parseDays(c))
}

// parseDays reads the ?days query parameter, defaulting to 30.
func parseDays(c *fiber.Ctx) int {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}

// clientIP extracts the caller address the same way the rest of the stack
// expects it: first X-Forwarded-For entry, then X-Real-Ip, then "unknown".
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		ips := fwd
		for i := 0; i < len(ips); i++ {
			if ips[i] == ',' {
				return ips[:i]
			}
		}
		return ips
	}
	if real := c.Get("X-Real-Ip"); real != "" {
		return real
	}
	return "unknown"
}
