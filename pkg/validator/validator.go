package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/daybook-app/daybook/internal/domain"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Use JSON tag names instead of struct field names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	return &Validator{
		validate: v,
	}
}

// Validate checks a request struct and returns a domain ValidationError
// with one itemized entry per failed rule.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return formatValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	fields := make([]domain.FieldError, 0, len(errs))
	for _, err := range errs {
		field := strings.ToLower(err.Field())

		var reason string
		switch err.Tag() {
		case "required":
			reason = "is required"
		case "email":
			reason = "must be a valid email address"
		case "min":
			reason = "must be at least " + err.Param() + " characters"
		case "max":
			reason = "must be at most " + err.Param() + " characters"
		case "uuid":
			reason = "must be a valid UUID"
		case "gte":
			reason = "must be greater than or equal to " + err.Param()
		case "lte":
			reason = "must be less than or equal to " + err.Param()
		case "oneof":
			reason = "must be one of " + err.Param()
		default:
			reason = "failed validation for " + err.Tag()
		}
		fields = append(fields, domain.FieldError{Field: field, Reason: reason})
	}

	return domain.NewValidationError(fields...)
}
