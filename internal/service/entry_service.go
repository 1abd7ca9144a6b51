package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
)

type EntryService struct {
	entryRepo repository.EntryRepository
}

type CreateEntryRequest struct {
	Content         string   `json:"content" validate:"required"`
	DurationSeconds int      `json:"duration_seconds" validate:"required"`
	Mood            *string  `json:"mood,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Timezone        string   `json:"timezone,omitempty"`
}

type ListEntriesRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit" validate:"omitempty,lte=100"`
	Year   int    `json:"year"`
	Month  int    `json:"month" validate:"omitempty,gte=1,lte=12"`
	Search string `json:"search"`
}

type EntryPage struct {
	Entries []*domain.Entry `json:"entries"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

func NewEntryService(entryRepo repository.EntryRepository) *EntryService {
	return &EntryService{entryRepo: entryRepo}
}

// Create validates and derives the entry fields, then relies on the
// store's atomic (user, day) constraint for the once-per-day rule. The
// client timezone is recorded as metadata only; the day key always
// comes from the server clock in UTC.
func (s *EntryService) Create(ctx context.Context, userID uuid.UUID, req CreateEntryRequest) (*domain.Entry, error) {
	var mood *domain.Mood
	if req.Mood != nil && *req.Mood != "" {
		m := domain.Mood(*req.Mood)
		mood = &m
	}

	entry, err := domain.NewEntry(userID, req.Content, req.DurationSeconds, mood, req.Tags, req.Timezone, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Get returns an entry owned by the user; anything else is not found.
func (s *EntryService) Get(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error) {
	return s.entryRepo.GetByID(ctx, userID, entryID)
}

// List returns a filtered, paginated page of the user's entries.
func (s *EntryService) List(ctx context.Context, userID uuid.UUID, req ListEntriesRequest) (*EntryPage, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	entries, total, err := s.entryRepo.List(ctx, userID, repository.EntryFilter{
		Page:   page,
		Limit:  limit,
		Year:   req.Year,
		Month:  req.Month,
		Search: req.Search,
	})
	if err != nil {
		return nil, err
	}

	return &EntryPage{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// HasEntryToday reports whether today's slot is already taken.
func (s *EntryService) HasEntryToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.entryRepo.ExistsForDay(ctx, userID, domain.DayKeyFor(time.Now()))
}

// Calendar lists the written days of a month with their moods. Year and
// month default to the current UTC month when unset.
func (s *EntryService) Calendar(ctx context.Context, userID uuid.UUID, year, month int) ([]*domain.CalendarDay, error) {
	now := time.Now().UTC()
	if year <= 0 {
		year = now.Year()
	}
	if month <= 0 {
		month = int(now.Month())
	}
	if month > 12 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "month", Reason: "must be between 1 and 12"})
	}

	return s.entryRepo.CalendarDays(ctx, userID, year, month)
}
