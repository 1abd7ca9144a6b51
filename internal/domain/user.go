package domain

import (
	"time"

	"github.com/google/uuid"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	MFAEnabled    bool       `json:"mfa_enabled" db:"mfa_enabled"`
	MFASecret     *string    `json:"-" db:"mfa_secret"`
	FailedLogins  int        `json:"-" db:"failed_logins"`
	LockedUntil   *time.Time `json:"-" db:"locked_until"`
	ReminderOptIn bool       `json:"reminder_opt_in" db:"reminder_opt_in"`
	Theme         Theme      `json:"theme" db:"theme"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
}

// IsLocked is derived from locked_until, never persisted separately.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
