package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
)

// handleError maps domain errors to HTTP responses. Unexpected failures are
// logged with their cause; the caller only sees a generic message.
func (h *Handler) handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(c.Context(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err.Error())
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrUserExists),
		errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrInvalidTwoFactorCode),
		errors.Is(err, core.ErrInvalidVerificationCode),
		errors.Is(err, core.ErrNotAnImage),
		errors.Is(err, core.ErrFileTooLarge),
		errors.Is(err, core.ErrNoFileUploaded),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooWeak),
		errors.Is(err, core.ErrInvalidPhone),
		errors.Is(err, core.ErrInvalidTOTPCode),
		errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrMissingAuthHeader),
		errors.Is(err, core.ErrInvalidSession):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrProjectNotFound),
		errors.Is(err, core.ErrFileNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
