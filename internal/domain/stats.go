package domain

// MonthlyStats aggregates a single month of a given year.
type MonthlyStats struct {
	Month       int     `json:"month" db:"month"`
	Count       int     `json:"count" db:"count"`
	TotalWords  int     `json:"total_words" db:"total_words"`
	TotalChars  int     `json:"total_chars" db:"total_chars"`
	AvgDuration float64 `json:"avg_duration" db:"avg_duration"`
}

// StatsOverview bundles the derived analytics for one identity.
type StatsOverview struct {
	CurrentStreak   int          `json:"current_streak"`
	TotalEntries    int          `json:"total_entries"`
	TotalWords      int          `json:"total_words"`
	ConsistencyRate float64      `json:"consistency_rate"`
	MoodCounts      map[Mood]int `json:"mood_counts"`
}

// CalendarDay marks one day of a month that has an entry.
type CalendarDay struct {
	DayKey string `json:"day_key" db:"day_key"`
	Mood   *Mood  `json:"mood,omitempty" db:"mood"`
}
