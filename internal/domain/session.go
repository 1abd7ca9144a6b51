package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the persisted record backing a refresh token. The token
// itself is stored only as a SHA-256 hash. Revocation flips Active to
// false; revoked rows are kept until pruned so logout leaves a trail.
type Session struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	RefreshTokenHash string    `json:"-" db:"refresh_token_hash"`
	UserAgent        string    `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress        string    `json:"ip_address,omitempty" db:"ip_address"`
	Active           bool      `json:"active" db:"active"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Usable reports whether the session may still renew access tokens.
func (s *Session) Usable(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}
