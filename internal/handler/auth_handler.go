package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/daybook-app/daybook/internal/service"
	"github.com/daybook-app/daybook/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	mfaService  *service.MFAService
	validator   *validator.Validator
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, mfaService *service.MFAService, validator *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		mfaService:  mfaService,
		validator:   validator,
	}
}

// Register handles account creation
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Register(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles user login, optionally with a second factor
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	req.UserAgent = c.Get("User-Agent")
	req.IPAddress = c.IP()

	resp, err := h.authService.Login(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// RefreshToken handles access token renewal
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	tokens, err := h.authService.RefreshAccess(c.Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

// Logout handles user logout
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	accessToken, _ := c.Locals("token").(string)
	if err := h.authService.Logout(c.Context(), req.RefreshToken, accessToken); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// SetupMFA provisions a secret and backup codes
// POST /api/v1/auth/mfa/setup
func (h *AuthHandler) SetupMFA(c *fiber.Ctx) error {
	resp, err := h.mfaService.Setup(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// VerifyMFA confirms the pending secret and enables MFA
// POST /api/v1/auth/mfa/verify
func (h *AuthHandler) VerifyMFA(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	if err := h.mfaService.Verify(c.Context(), currentUserID(c), req.Code); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "MFA enabled",
	})
}

// DisableMFA turns off the second factor; requires password and code
// POST /api/v1/auth/mfa/disable
func (h *AuthHandler) DisableMFA(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password" validate:"required"`
		Code     string `json:"code" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	if err := h.userService.DisableMFA(c.Context(), currentUserID(c), req.Password, req.Code); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "MFA disabled",
	})
}
