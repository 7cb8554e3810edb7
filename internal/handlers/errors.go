package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"linguamentor/backend/internal/services"
)

// errorResponse maps service errors onto HTTP status codes.
func errorResponse(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// pageParams reads skip and limit query parameters.
func pageParams(c *fiber.Ctx) (int64, int64, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit", services.DefaultPageLimit)
	if err != nil {
		return 0, 0, err
	}
	if err := services.ValidatePage(skip, limit); err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func queryInt(c *fiber.Ctx, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &services.ValidationError{Message: key + " must be an integer"}
	}
	return v, nil
}
