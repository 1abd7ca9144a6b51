package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
)

const entryColumns = `id, user_id, content, word_count, char_count,
			   duration_seconds, day_key, mood, tags, timezone, created_at`

type entryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository creates a new PostgreSQL entry repository
func NewEntryRepository(db *sqlx.DB) repository.EntryRepository {
	return &entryRepository{db: db}
}

// Create inserts a new entry. The entries_user_day_key constraint is
// the single source of truth for the one-entry-per-day rule; a
// concurrent duplicate insert fails here deterministically instead of
// racing past a pre-check.
func (r *entryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
		INSERT INTO entries (
			id, user_id, content, word_count, char_count,
			duration_seconds, day_key, mood, tags, timezone, created_at
		) VALUES (
			:id, :user_id, :content, :word_count, :char_count,
			:duration_seconds, :day_key, :mood, :tags, :timezone, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &domain.ConflictError{Message: "already written today"}
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry scoped to its owner. A lookup across
// identities reports not found, never forbidden.
func (r *entryRepository) GetByID(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE id = $1 AND user_id = $2`

	var entry domain.Entry
	err := r.db.GetContext(ctx, &entry, query, entryID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "entry"}
		}
		return nil, fmt.Errorf("failed to get entry by id: %w", err)
	}

	return &entry, nil
}

// List retrieves entries with pagination, optional month filter and
// optional content/tag search
func (r *entryRepository) List(ctx context.Context, userID uuid.UUID, filter repository.EntryFilter) ([]*domain.Entry, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Year > 0 && filter.Month > 0 {
		args = append(args, fmt.Sprintf("%04d-%02d-%%", filter.Year, filter.Month))
		where += fmt.Sprintf(` AND day_key LIKE $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		where += fmt.Sprintf(` AND (content ILIKE '%%' || $%d || '%%' OR $%d = ANY(tags))`, len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM entries ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := `
		SELECT ` + entryColumns + `
		FROM entries ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var entries []*domain.Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, total, nil
}

// ExistsForDay checks whether the user already wrote on the given day
func (r *entryRepository) ExistsForDay(ctx context.Context, userID uuid.UUID, dayKey string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM entries WHERE user_id = $1 AND day_key = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, dayKey)
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}

	return exists, nil
}

// DayKeysSince returns the distinct day keys on or after fromDayKey,
// newest first
func (r *entryRepository) DayKeysSince(ctx context.Context, userID uuid.UUID, fromDayKey string) ([]string, error) {
	query := `
		SELECT day_key
		FROM entries
		WHERE user_id = $1 AND day_key >= $2
		ORDER BY day_key DESC`

	var keys []string
	err := r.db.SelectContext(ctx, &keys, query, userID, fromDayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get day keys: %w", err)
	}

	return keys, nil
}

// CalendarDays returns the written days of a month with their moods
func (r *entryRepository) CalendarDays(ctx context.Context, userID uuid.UUID, year, month int) ([]*domain.CalendarDay, error) {
	query := `
		SELECT day_key, mood
		FROM entries
		WHERE user_id = $1 AND day_key LIKE $2
		ORDER BY day_key`

	prefix := fmt.Sprintf("%04d-%02d-%%", year, month)

	var days []*domain.CalendarDay
	err := r.db.SelectContext(ctx, &days, query, userID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar days: %w", err)
	}

	return days, nil
}

// MonthlyStats aggregates entry counts, word/char totals and average
// duration per month of the given year
func (r *entryRepository) MonthlyStats(ctx context.Context, userID uuid.UUID, year int) ([]*domain.MonthlyStats, error) {
	query := `
		SELECT SUBSTRING(day_key, 6, 2)::int AS month,
			   COUNT(*) AS count,
			   COALESCE(SUM(word_count), 0) AS total_words,
			   COALESCE(SUM(char_count), 0) AS total_chars,
			   COALESCE(AVG(duration_seconds), 0) AS avg_duration
		FROM entries
		WHERE user_id = $1 AND day_key LIKE $2
		GROUP BY month
		ORDER BY month`

	prefix := fmt.Sprintf("%04d-%%", year)

	var stats []*domain.MonthlyStats
	err := r.db.SelectContext(ctx, &stats, query, userID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}

	return stats, nil
}

// MoodCounts maps each recorded mood to its entry count
func (r *entryRepository) MoodCounts(ctx context.Context, userID uuid.UUID) (map[domain.Mood]int, error) {
	query := `
		SELECT mood, COUNT(*) AS count
		FROM entries
		WHERE user_id = $1 AND mood IS NOT NULL
		GROUP BY mood`

	rows := []struct {
		Mood  domain.Mood `db:"mood"`
		Count int         `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get mood counts: %w", err)
	}

	counts := make(map[domain.Mood]int, len(rows))
	for _, row := range rows {
		counts[row.Mood] = row.Count
	}

	return counts, nil
}

// CountForUser returns the total number of entries of a user
func (r *entryRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM entries WHERE user_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}

// TotalWords returns the total word count across all entries of a user
func (r *entryRepository) TotalWords(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(word_count), 0) FROM entries WHERE user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("failed to sum word counts: %w", err)
	}

	return total, nil
}

// FirstEntryTime returns the creation time of the oldest entry, or nil
// when the user has no entries
func (r *entryRepository) FirstEntryTime(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	query := `SELECT MIN(created_at) FROM entries WHERE user_id = $1`

	var first sql.NullTime
	if err := r.db.GetContext(ctx, &first, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get first entry time: %w", err)
	}

	if !first.Valid {
		return nil, nil
	}
	return &first.Time, nil
}

// ListAllForUser retrieves every entry of a user, oldest first (export)
func (r *entryRepository) ListAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE user_id = $1
		ORDER BY created_at`

	var entries []*domain.Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list entries for export: %w", err)
	}

	return entries, nil
}

// DeleteAllForUser removes every entry of a user (account deletion)
func (r *entryRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM entries WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	return nil
}
