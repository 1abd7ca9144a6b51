package email

import (
	"context"
)

// EmailService defines the outbound notification surface. Delivery is
// an external collaborator; the core only depends on this interface.
type EmailService interface {
	// SendWelcomeEmail greets a newly registered user
	SendWelcomeEmail(ctx context.Context, to string) error

	// SendPasswordChangedEmail notifies a user their password changed
	SendPasswordChangedEmail(ctx context.Context, to string) error

	// SendReminderEmail nudges an opted-in user who has not written today
	SendReminderEmail(ctx context.Context, to string) error
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}
