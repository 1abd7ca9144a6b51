package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daybook-app/daybook/internal/service"
	"github.com/daybook-app/daybook/pkg/validator"
)

type AccountHandler struct {
	userService *service.UserService
	validator   *validator.Validator
}

func NewAccountHandler(userService *service.UserService, validator *validator.Validator) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		validator:   validator,
	}
}

// Profile returns the authenticated identity
// GET /api/v1/account/profile
func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdatePreferences patches the preference bag
// PUT /api/v1/account/preferences
func (h *AccountHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req service.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.UpdatePreferences(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// ChangePassword rotates the credential and signs out all devices
// PUT /api/v1/account/password
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	if err := h.userService.ChangePassword(c.Context(), currentUserID(c), req); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password changed; please log in again",
	})
}

// Export streams the full account snapshot as a JSON download
// POST /api/v1/account/export
func (h *AccountHandler) Export(c *fiber.Ctx) error {
	var req struct {
		Format string `json:"format" validate:"omitempty,oneof=json"`
	}
	// Body is optional; format defaults to json
	_ = c.BodyParser(&req)

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	data, err := h.userService.ExportAll(c.Context(), currentUserID(c), req.Format)
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("daybook-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).JSON(data)
}

// Delete destroys the account and everything it owns
// DELETE /api/v1/account
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	var req service.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	if err := h.userService.DeleteAccount(c.Context(), currentUserID(c), req); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account deleted",
	})
}
