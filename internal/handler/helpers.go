package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
)

// respondError maps the closed set of domain error variants to HTTP
// statuses. Anything outside the taxonomy is logged and surfaced as a
// generic server error.
func respondError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": ce.Message,
		})
	}

	var ne *domain.NotFoundError
	if errors.As(err, &ne) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ne.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrAccountLocked):
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error": "account locked",
		})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("Unhandled error [%s %s]: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// currentUserID reads the identity resolved by the auth middleware.
func currentUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
