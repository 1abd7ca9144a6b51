package password

import (
	"unicode"

	"github.com/daybook-app/daybook/internal/domain"
)

const MinLength = 8

// Check validates a raw password against the strength policy and
// returns every violated rule, not just the first one.
func Check(raw string) error {
	var fields []domain.FieldError

	if len(raw) < MinLength {
		fields = append(fields, domain.FieldError{Field: "password", Reason: "must be at least 8 characters"})
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		fields = append(fields, domain.FieldError{Field: "password", Reason: "must contain an uppercase letter"})
	}
	if !hasLower {
		fields = append(fields, domain.FieldError{Field: "password", Reason: "must contain a lowercase letter"})
	}
	if !hasDigit {
		fields = append(fields, domain.FieldError{Field: "password", Reason: "must contain a digit"})
	}
	if !hasSymbol {
		fields = append(fields, domain.FieldError{Field: "password", Reason: "must contain a symbol"})
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
