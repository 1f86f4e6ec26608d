package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/services"
)

// fail maps service error kinds onto HTTP statuses. Unknown errors are
// masked as a 500 so internals never leak.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrBadRequest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
}
