package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in session and returns JSON 401 otherwise.
// Every protected endpoint is JSON; the SPA handles the redirect itself.
func RequireAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyFromProtected)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "login required",
		})
	}
	return c.Next()
}
