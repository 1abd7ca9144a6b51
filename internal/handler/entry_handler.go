package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/service"
	"github.com/daybook-app/daybook/pkg/validator"
)

type EntryHandler struct {
	entryService *service.EntryService
	validator    *validator.Validator
}

func NewEntryHandler(entryService *service.EntryService, validator *validator.Validator) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		validator:    validator,
	}
}

// Create writes today's entry; at most one per calendar day
// POST /api/v1/entries
func (h *EntryHandler) Create(c *fiber.Ctx) error {
	var req service.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	entry, err := h.entryService.Create(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// List returns a paginated, filterable page of entries
// GET /api/v1/entries?page=&limit=&year=&month=&search=
func (h *EntryHandler) List(c *fiber.Ctx) error {
	req := service.ListEntriesRequest{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Year:   c.QueryInt("year", 0),
		Month:  c.QueryInt("month", 0),
		Search: c.Query("search"),
	}

	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err)
	}

	page, err := h.entryService.List(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

// Today reports whether the daily slot is still open
// GET /api/v1/entries/today
func (h *EntryHandler) Today(c *fiber.Ctx) error {
	written, err := h.entryService.HasEntryToday(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"written_today":   written,
		"can_write_today": !written,
	})
}

// Calendar lists the written days of a month
// GET /api/v1/entries/calendar?year=&month=
func (h *EntryHandler) Calendar(c *fiber.Ctx) error {
	days, err := h.entryService.Calendar(c.Context(), currentUserID(c), c.QueryInt("year", 0), c.QueryInt("month", 0))
	if err != nil {
		return respondError(c, err)
	}

	if days == nil {
		days = []*domain.CalendarDay{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"days": days,
	})
}

// Get returns a single owned entry
// GET /api/v1/entries/:id
func (h *EntryHandler) Get(c *fiber.Ctx) error {
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		// An unparseable id can't name an existing entry
		return respondError(c, &domain.NotFoundError{Resource: "entry"})
	}

	entry, err := h.entryService.Get(c.Context(), currentUserID(c), entryID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(entry)
}
