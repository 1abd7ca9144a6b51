package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	entryHandler *EntryHandler,
	statsHandler *StatsHandler,
	accountHandler *AccountHandler,
	healthHandler *HealthHandler,
	authMiddleware fiber.Handler,
	optionalAuth fiber.Handler,
	authRateLimit fiber.Handler,
	apiRateLimit fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// API v1
	api := app.Group("/api/v1", apiRateLimit)

	// Auth routes (public, tighter throttle)
	auth := api.Group("/auth", authRateLimit)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	// Logout works without a bearer token but uses one when present to
	// blacklist the access token too
	auth.Post("/logout", optionalAuth, authHandler.Logout)

	// MFA management (protected)
	mfa := auth.Group("/mfa", authMiddleware)
	mfa.Post("/setup", authHandler.SetupMFA)
	mfa.Post("/verify", authHandler.VerifyMFA)
	mfa.Post("/disable", authHandler.DisableMFA)

	// Journal entries (protected)
	entries := api.Group("/entries", authMiddleware)
	entries.Post("/", entryHandler.Create)
	entries.Get("/", entryHandler.List)
	entries.Get("/today", entryHandler.Today)
	entries.Get("/calendar", entryHandler.Calendar)
	entries.Get("/:id", entryHandler.Get)

	// Derived statistics (protected)
	stats := api.Group("/stats", authMiddleware)
	stats.Get("/overview", statsHandler.Overview)
	stats.Get("/monthly", statsHandler.Monthly)
	stats.Get("/mood", statsHandler.Mood)

	// Account lifecycle (protected)
	account := api.Group("/account", authMiddleware)
	account.Get("/profile", accountHandler.Profile)
	account.Put("/preferences", accountHandler.UpdatePreferences)
	account.Put("/password", accountHandler.ChangePassword)
	account.Post("/export", accountHandler.Export)
	account.Delete("/", accountHandler.Delete)
}
