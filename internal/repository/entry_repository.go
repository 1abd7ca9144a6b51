package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
)

// EntryFilter narrows a paginated entry listing. Year/Month of zero
// mean no month filter; an empty Search means no text filter.
type EntryFilter struct {
	Page   int
	Limit  int
	Year   int
	Month  int
	Search string
}

type EntryRepository interface {
	// Create inserts the entry; a (user, day) duplicate must surface as
	// a domain ConflictError from the unique constraint, not a pre-check.
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error)
	List(ctx context.Context, userID uuid.UUID, filter EntryFilter) ([]*domain.Entry, int, error)
	ExistsForDay(ctx context.Context, userID uuid.UUID, dayKey string) (bool, error)
	// DayKeysSince returns the distinct day keys on or after the given
	// key, newest first, for the streak walk.
	DayKeysSince(ctx context.Context, userID uuid.UUID, fromDayKey string) ([]string, error)
	CalendarDays(ctx context.Context, userID uuid.UUID, year, month int) ([]*domain.CalendarDay, error)
	MonthlyStats(ctx context.Context, userID uuid.UUID, year int) ([]*domain.MonthlyStats, error)
	MoodCounts(ctx context.Context, userID uuid.UUID) (map[domain.Mood]int, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
	TotalWords(ctx context.Context, userID uuid.UUID) (int, error)
	FirstEntryTime(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
