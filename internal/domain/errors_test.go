package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestErrorPredicates(t *testing.T) {
	validation := NewValidationError(FieldError{Field: "email", Reason: "required"})
	conflict := &ConflictError{Message: "email already registered"}
	notFound := &NotFoundError{Resource: "entry"}

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(conflict))

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(validation))
}

func TestErrorPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("creating user: %w", &ConflictError{Message: "email already registered"})
	assert.True(t, IsConflict(wrapped))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(
		FieldError{Field: "content", Reason: "must not be empty"},
		FieldError{Field: "mood", Reason: "unknown"},
	)
	assert.Equal(t, "content: must not be empty; mood: unknown", err.Error())
}

func TestUserIsLocked(t *testing.T) {
	now := mustParse(t, "2025-06-10T12:00:00Z")

	unlocked := &User{}
	assert.False(t, unlocked.IsLocked(now))

	future := now.Add(time.Hour)
	locked := &User{LockedUntil: &future}
	assert.True(t, locked.IsLocked(now))

	past := now.Add(-time.Minute)
	expired := &User{LockedUntil: &past}
	assert.False(t, expired.IsLocked(now))
}

func TestSessionUsable(t *testing.T) {
	now := mustParse(t, "2025-06-10T12:00:00Z")

	live := &Session{Active: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Usable(now))

	revoked := &Session{Active: false, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, revoked.Usable(now))

	expired := &Session{Active: true, ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Usable(now))
}
