package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
)

func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, apperr.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, apperr.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		return fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	case errors.Is(err, apperr.ErrUnsupportedMediaType):
		return fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	}
}

// fail maps a domain error onto the JSON error body. External and unknown
// failures are logged server-side and never leak detail to the client.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status, code := errStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.Path(), "err", err)
		msg = "an unexpected error occurred"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"code": code, "message": msg},
	})
}
