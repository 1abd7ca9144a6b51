package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/daybook-app/daybook/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Overview bundles streak, totals, consistency and mood counts
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.statsService.Overview(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(overview)
}

// Monthly aggregates the twelve months of a year
// GET /api/v1/stats/monthly?year=
func (h *StatsHandler) Monthly(c *fiber.Ctx) error {
	months, err := h.statsService.MonthlyAggregate(c.Context(), currentUserID(c), c.QueryInt("year", 0))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"months": months,
	})
}

// Mood maps each mood to its entry count
// GET /api/v1/stats/mood
func (h *StatsHandler) Mood(c *fiber.Ctx) error {
	counts, err := h.statsService.MoodDistribution(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"moods": counts,
	})
}
