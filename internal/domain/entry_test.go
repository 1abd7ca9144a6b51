package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "utc instant",
			instant:  time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
			expected: "2025-03-14",
		},
		{
			name:     "non-utc instant converts to utc first",
			instant:  time.Date(2025, 3, 14, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			expected: "2025-03-15",
		},
		{
			name:     "midnight boundary",
			instant:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "2025-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayKeyFor(tt.instant))
		})
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \n\t  "))
	assert.Equal(t, 1, CountWords("hello"))
	assert.Equal(t, 4, CountWords("  wrote a bit today  "))
	assert.Equal(t, 3, CountWords("tabs\tand\nnewlines"))
}

func TestCountChars(t *testing.T) {
	assert.Equal(t, 0, CountChars(""))
	assert.Equal(t, 5, CountChars("hello"))
	// Runes, not bytes
	assert.Equal(t, 4, CountChars("日記です"))
}

func TestNewEntry(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 6, 10, 18, 4, 0, 0, time.UTC)

	t.Run("valid entry derives all fields", func(t *testing.T) {
		mood := MoodGood
		entry, err := NewEntry(userID, "  wrote a bit today  ", 45, &mood, []string{" work ", "life"}, "America/New_York", now)
		require.NoError(t, err)

		assert.Equal(t, userID, entry.UserID)
		assert.Equal(t, "wrote a bit today", entry.Content)
		assert.Equal(t, 4, entry.WordCount)
		assert.Equal(t, 17, entry.CharCount)
		assert.Equal(t, 45, entry.DurationSeconds)
		assert.Equal(t, "2025-06-10", entry.DayKey)
		assert.Equal(t, MoodGood, *entry.Mood)
		assert.Equal(t, []string{"work", "life"}, []string(entry.Tags))
		assert.Equal(t, "America/New_York", entry.Timezone)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	t.Run("mood and tags are optional", func(t *testing.T) {
		entry, err := NewEntry(userID, "short one", 1, nil, nil, "", now)
		require.NoError(t, err)
		assert.Nil(t, entry.Mood)
		assert.Empty(t, entry.Tags)
	})

	t.Run("content at the limit is accepted", func(t *testing.T) {
		_, err := NewEntry(userID, strings.Repeat("a", MaxContentLength), 30, nil, nil, "", now)
		assert.NoError(t, err)
	})

	t.Run("duration at the limit is accepted", func(t *testing.T) {
		_, err := NewEntry(userID, "right at the buzzer", MaxWriteSeconds, nil, nil, "", now)
		assert.NoError(t, err)
	})

	tests := []struct {
		name     string
		content  string
		duration int
		mood     *Mood
		tags     []string
		field    string
	}{
		{
			name:     "empty content",
			content:  "   ",
			duration: 30,
			field:    "content",
		},
		{
			name:     "content over the limit",
			content:  strings.Repeat("a", MaxContentLength+1),
			duration: 30,
			field:    "content",
		},
		{
			name:     "zero duration",
			content:  "ok",
			duration: 0,
			field:    "duration_seconds",
		},
		{
			name:     "duration over sixty seconds",
			content:  "took too long",
			duration: 61,
			field:    "duration_seconds",
		},
		{
			name:     "unknown mood",
			content:  "ok",
			duration: 30,
			mood:     moodPtr("ecstatic"),
			field:    "mood",
		},
		{
			name:     "too many tags",
			content:  "ok",
			duration: 30,
			tags:     []string{"a", "b", "c", "d", "e", "f"},
			field:    "tags",
		},
		{
			name:     "blank tag",
			content:  "ok",
			duration: 30,
			tags:     []string{"fine", "  "},
			field:    "tags",
		},
		{
			name:     "tag over fifty characters",
			content:  "ok",
			duration: 30,
			tags:     []string{strings.Repeat("x", MaxTagLength+1)},
			field:    "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(userID, tt.content, tt.duration, tt.mood, tt.tags, "", now)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			found := false
			for _, f := range ve.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a violation on %q, got %v", tt.field, ve.Fields)
		})
	}

	t.Run("all violations reported together", func(t *testing.T) {
		_, err := NewEntry(userID, "", 0, moodPtr("meh"), nil, "", now)
		require.Error(t, err)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 3)
	})
}

func moodPtr(m Mood) *Mood {
	return &m
}
