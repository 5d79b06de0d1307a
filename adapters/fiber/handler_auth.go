package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
)

func (h *Handler) register(c fiber.Ctx) error {
	var input core.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateRegisterInput(input); err != nil {
		return h.handleError(c, err)
	}

	user, err := h.auth.Register(c.Context(), input)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) login(c fiber.Ctx) error {
	var input core.LoginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateLoginInput(input); err != nil {
		return h.handleError(c, err)
	}

	result, err := h.auth.Login(c.Context(), input)
	if err != nil {
		return h.handleError(c, err)
	}

	// Intermediate state: credentials are good but the second factor is
	// outstanding. No session exists yet.
	if result.RequiresTwoFactor {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"requiresTwoFactor": true,
			"message":           "Please provide 2FA code",
		})
	}

	session, err := h.sessions.Create(c.Context(), result.User.ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"user":    result.User,
		"token":   session.Token,
	})
}

// logout always reports success; a missing or unknown token is not an error
// worth surfacing to the client.
func (h *Handler) logout(c fiber.Ctx) error {
	if token := extractToken(c); token != "" {
		if err := h.sessions.Destroy(c.Context(), token); err != nil {
			return h.handleError(c, err)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Logout successful",
	})
}

func (h *Handler) profile(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user": currentUser(c),
	})
}

func (h *Handler) generateTwoFactor(c fiber.Ctx) error {
	secret, err := h.auth.GenerateTwoFactorSecret(c.Context(), currentUser(c).ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(secret)
}

type enableTwoFactorInput struct {
	Secret string `json:"secret"`
	Token  string `json:"token"`
}

func (h *Handler) enableTwoFactor(c fiber.Ctx) error {
	var input enableTwoFactorInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateTOTPCode(input.Token); err != nil {
		return h.handleError(c, err)
	}

	if err := h.auth.EnableTwoFactor(c.Context(), currentUser(c).ID, input.Secret, input.Token); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) disableTwoFactor(c fiber.Ctx) error {
	if err := h.auth.DisableTwoFactor(c.Context(), currentUser(c).ID); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
