package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Mood string

const (
	MoodTerrible Mood = "terrible"
	MoodBad      Mood = "bad"
	MoodNeutral  Mood = "neutral"
	MoodGood     Mood = "good"
	MoodGreat    Mood = "great"
)

// Moods lists the five-point scale in ascending order.
var Moods = []Mood{MoodTerrible, MoodBad, MoodNeutral, MoodGood, MoodGreat}

func (m Mood) Valid() bool {
	switch m {
	case MoodTerrible, MoodBad, MoodNeutral, MoodGood, MoodGreat:
		return true
	}
	return false
}

const (
	MaxContentLength = 2000
	MaxWriteSeconds  = 60
	MaxTags          = 5
	MaxTagLength     = 50

	// DayKeyLayout is the canonical calendar-day format. Keys are always
	// derived from the creation instant in UTC, never from a client clock.
	DayKeyLayout = "2006-01-02"
)

// Entry is immutable once created; the (UserID, DayKey) pair is unique.
type Entry struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Content         string         `json:"content" db:"content"`
	WordCount       int            `json:"word_count" db:"word_count"`
	CharCount       int            `json:"char_count" db:"char_count"`
	DurationSeconds int            `json:"duration_seconds" db:"duration_seconds"`
	DayKey          string         `json:"day_key" db:"day_key"`
	Mood            *Mood          `json:"mood,omitempty" db:"mood"`
	Tags            pq.StringArray `json:"tags" db:"tags"`
	Timezone        string         `json:"timezone,omitempty" db:"timezone"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// DayKeyFor derives the canonical UTC calendar-day key for an instant.
func DayKeyFor(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// CountWords counts whitespace-separated words in content.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// CountChars counts runes, not bytes.
func CountChars(content string) int {
	return utf8.RuneCountInString(content)
}

// NewEntry validates the input, computes the derived fields and returns
// an entry ready for the atomic insert. Derivation happens here, before
// the write, never inside the storage layer.
func NewEntry(userID uuid.UUID, content string, durationSeconds int, mood *Mood, tags []string, timezone string, now time.Time) (*Entry, error) {
	content = strings.TrimSpace(content)

	var fields []FieldError
	if content == "" {
		fields = append(fields, FieldError{Field: "content", Reason: "must not be empty"})
	} else if utf8.RuneCountInString(content) > MaxContentLength {
		fields = append(fields, FieldError{Field: "content", Reason: "must be at most 2000 characters"})
	}
	if durationSeconds <= 0 || durationSeconds > MaxWriteSeconds {
		fields = append(fields, FieldError{Field: "duration_seconds", Reason: "must be between 1 and 60 seconds"})
	}
	if mood != nil && !mood.Valid() {
		fields = append(fields, FieldError{Field: "mood", Reason: "must be one of terrible, bad, neutral, good, great"})
	}
	if len(tags) > MaxTags {
		fields = append(fields, FieldError{Field: "tags", Reason: "at most 5 tags allowed"})
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			fields = append(fields, FieldError{Field: "tags", Reason: "each tag must be 1-50 characters"})
			break
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned = append(cleaned, strings.TrimSpace(tag))
	}

	return &Entry{
		ID:              uuid.New(),
		UserID:          userID,
		Content:         content,
		WordCount:       CountWords(content),
		CharCount:       CountChars(content),
		DurationSeconds: durationSeconds,
		DayKey:          DayKeyFor(now),
		Mood:            mood,
		Tags:            cleaned,
		Timezone:        timezone,
		CreatedAt:       now,
	}, nil
}
