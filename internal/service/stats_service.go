package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
)

// maxStreakScan bounds the backward day walk.
const maxStreakScan = 365

type StatsService struct {
	entryRepo repository.EntryRepository
}

func NewStatsService(entryRepo repository.EntryRepository) *StatsService {
	return &StatsService{entryRepo: entryRepo}
}

// CurrentStreak counts consecutive written days walking backward from
// today (UTC). A missing entry for today does not break the streak —
// today is still writable — but any earlier gap terminates the walk.
func (s *StatsService) CurrentStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -maxStreakScan)

	keys, err := s.entryRepo.DayKeysSince(ctx, userID, domain.DayKeyFor(from))
	if err != nil {
		return 0, err
	}

	written := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		written[key] = struct{}{}
	}

	day := today
	if _, ok := written[domain.DayKeyFor(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for scanned := 0; scanned < maxStreakScan; scanned++ {
		if _, ok := written[domain.DayKeyFor(day)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak, nil
}

// MonthlyAggregate returns one bucket per month of the given year,
// zero-filled for months without entries.
func (s *StatsService) MonthlyAggregate(ctx context.Context, userID uuid.UUID, year int) ([]*domain.MonthlyStats, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	rows, err := s.entryRepo.MonthlyStats(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	months := make([]*domain.MonthlyStats, 12)
	for i := range months {
		months[i] = &domain.MonthlyStats{Month: i + 1}
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			months[row.Month-1] = row
		}
	}

	return months, nil
}

// MoodDistribution maps each mood to its entry count over all entries.
func (s *StatsService) MoodDistribution(ctx context.Context, userID uuid.UUID) (map[domain.Mood]int, error) {
	counts, err := s.entryRepo.MoodCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Zero-fill the full scale so clients see every mood
	for _, mood := range domain.Moods {
		if _, ok := counts[mood]; !ok {
			counts[mood] = 0
		}
	}

	return counts, nil
}

// ConsistencyRate is total entries over days since the first entry
// (inclusive), as a percentage capped at 100.
func (s *StatsService) ConsistencyRate(ctx context.Context, userID uuid.UUID) (float64, error) {
	first, err := s.entryRepo.FirstEntryTime(ctx, userID)
	if err != nil {
		return 0, err
	}
	if first == nil {
		return 0, nil
	}

	count, err := s.entryRepo.CountForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstUTC := first.UTC()
	firstDay := time.Date(firstUTC.Year(), firstUTC.Month(), firstUTC.Day(), 0, 0, 0, 0, time.UTC)

	days := int(today.Sub(firstDay).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	rate := float64(count) / float64(days) * 100
	if rate > 100 {
		rate = 100
	}

	return math.Round(rate*10) / 10, nil
}

// Overview bundles streak, totals, consistency and mood counts.
func (s *StatsService) Overview(ctx context.Context, userID uuid.UUID) (*domain.StatsOverview, error) {
	streak, err := s.CurrentStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.entryRepo.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	words, err := s.entryRepo.TotalWords(ctx, userID)
	if err != nil {
		return nil, err
	}

	rate, err := s.ConsistencyRate(ctx, userID)
	if err != nil {
		return nil, err
	}

	moods, err := s.MoodDistribution(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.StatsOverview{
		CurrentStreak:   streak,
		TotalEntries:    total,
		TotalWords:      words,
		ConsistencyRate: rate,
		MoodCounts:      moods,
	}, nil
}
