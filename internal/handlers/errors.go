package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/httpx"
)

const genericMessage = "Something went wrong. Please try again."

// StatusFor maps an error to the HTTP status it should produce. Malformed
// numbers deliberately fall through to 500.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, httpx.ErrMissingField):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders failures as the error page, or as a JSON envelope for
// API clients. Server errors never expose their cause.
func (h *Handlers) ErrorHandler(c fiber.Ctx, err error) error {
	status := StatusFor(err)

	message := genericMessage
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe) && status < fiber.StatusInternalServerError:
		message = fe.Message
	case status == fiber.StatusBadRequest:
		message = "The form is missing a required field."
	}

	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	if httpx.WantsJSON(c) {
		return httpx.Error(c, status, message)
	}

	if rerr := c.Status(status).Render("error", fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
	}); rerr != nil {
		h.log.Warn("failed to render error page", zap.Error(rerr))
		return c.Status(status).SendString(message)
	}
	return nil
}
