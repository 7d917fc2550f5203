package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

// formInt parses an integer form field, treating an absent field as 0.
// Malformed values are a client error, not a silent zero.
func formInt(c *fiber.Ctx, field string) (int64, error) {
	raw := c.FormValue(field, "0")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", field, services.ErrInvalidInput)
	}
	return n, nil
}

// errorStatus maps domain errors to HTTP status codes. Anything unknown is a
// 500; the raw error never reaches the client.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrNotAssigned):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrAlreadyValidated),
		errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders a domain error. Internal errors are logged server-side and
// replaced with a generic message.
func fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("💥 [HTTP] %s %s: %v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
