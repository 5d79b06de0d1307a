package fiber

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
)

// extractToken pulls the bearer token from the Authorization header.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// requireAuth validates the session token on every request (no caching) and
// stores user and session in the context for downstream handlers. Inactive
// users are rejected even when their session row is still valid.
func (h *Handler) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrMissingAuthHeader.Error(),
		})
	}

	data, err := h.sessions.Validate(c.Context(), token)
	if err != nil || !data.User.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrInvalidSession.Error(),
		})
	}

	c.Locals("user", data.User)
	c.Locals("session", data.Session)

	return c.Next()
}

// currentUser returns the authenticated user stored by requireAuth.
func currentUser(c fiber.Ctx) *core.User {
	user, _ := c.Locals("user").(*core.User)
	return user
}
