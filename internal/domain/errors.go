package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel auth errors. Credential and token failures are reported
// generically so a caller cannot tell which factor failed; the locked
// and MFA-required signals are intentionally distinguishable.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountLocked      = errors.New("account is locked")
	ErrMFARequired        = errors.New("mfa code required")
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries itemized per-field rule failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError from field/reason pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ConflictError reports a uniqueness violation with a specific
// human-readable cause (duplicate email, duplicate day entry).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports an unknown resource. Cross-identity access
// attempts report this too, never a distinct "forbidden".
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// RateLimitError signals request throttling at the boundary.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return "too many requests"
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
