package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendEmailService implements EmailService using Resend
type ResendEmailService struct {
	client *resend.Client
	config *EmailConfig
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(config *EmailConfig) (*ResendEmailService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	client := resend.NewClient(config.APIKey)

	return &ResendEmailService{
		client: client,
		config: config,
	}, nil
}

func (s *ResendEmailService) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent successfully to %s (ID: %s)", to, sent.Id)
	return nil
}

// SendWelcomeEmail greets a newly registered user
func (s *ResendEmailService) SendWelcomeEmail(ctx context.Context, to string) error {
	return s.send(ctx, to, "Welcome to Daybook", WelcomeEmailTemplate())
}

// SendPasswordChangedEmail notifies a user their password changed
func (s *ResendEmailService) SendPasswordChangedEmail(ctx context.Context, to string) error {
	return s.send(ctx, to, "Your Daybook password was changed", PasswordChangedEmailTemplate())
}

// SendReminderEmail nudges an opted-in user who has not written today
func (s *ResendEmailService) SendReminderEmail(ctx context.Context, to string) error {
	return s.send(ctx, to, "One minute for today's entry", ReminderEmailTemplate())
}
