package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/pkg/jwt"
)

// TokenChecker is the read side of the access-token blacklist,
// satisfied by blacklist.TokenBlacklist.
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	IsUserBlacklisted(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// AuthMiddleware gates a request through the full session check:
// bearer token present, signature and expiry valid, not blacklisted,
// identity resolvable, account not locked. Rejection at any edge is
// terminal; the resolved identity is threaded via fiber locals, never
// a mutable global.
func AuthMiddleware(tokenService *jwt.TokenService, tokenBlacklist TokenChecker, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or malformed authorization header",
			})
		}

		claims, err := tokenService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		if claims.TokenType != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token type",
			})
		}

		isBlacklisted, err := tokenBlacklist.IsBlacklisted(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify token status",
			})
		}
		if isBlacklisted {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token has been revoked",
			})
		}

		if claims.IssuedAt != nil {
			userBlacklisted, err := tokenBlacklist.IsUserBlacklisted(c.Context(), claims.UserID.String(), claims.IssuedAt.Time)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to verify token status",
				})
			}
			if userBlacklisted {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "token invalidated due to password change",
				})
			}
		}

		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "identity not found",
			})
		}

		if user.IsLocked(time.Now()) {
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"error": "account locked",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("email", user.Email)
		c.Locals("token", token)

		return c.Next()
	}
}

// OptionalAuthMiddleware resolves an identity when a valid bearer token
// is present and otherwise proceeds unauthenticated. Every failure mode
// is intentionally downgraded to anonymous.
func OptionalAuthMiddleware(tokenService *jwt.TokenService, tokenBlacklist TokenChecker, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := tokenService.ValidateToken(token)
		if err != nil || claims.TokenType != "access" {
			return c.Next()
		}

		if isBlacklisted, err := tokenBlacklist.IsBlacklisted(c.Context(), token); err != nil || isBlacklisted {
			return c.Next()
		}

		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil || user.IsLocked(time.Now()) {
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("email", user.Email)
		c.Locals("token", token)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
