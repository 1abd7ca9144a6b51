package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/pkg/email"
	"github.com/daybook-app/daybook/pkg/hash"
	"github.com/daybook-app/daybook/pkg/password"
)

// ConfirmationPhrase must be sent verbatim to delete an account.
const ConfirmationPhrase = "DELETE MY ACCOUNT"

type UserService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	entryRepo    repository.EntryRepository
	backupRepo   repository.BackupCodeRepository
	authService  *AuthService
	mfaService   *MFAService
	emailService email.EmailService
	hasher       *hash.Hasher
	cfg          *config.Config
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PreferencesRequest struct {
	ReminderOptIn *bool   `json:"reminder_opt_in,omitempty"`
	Theme         *string `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type DeleteAccountRequest struct {
	Password     string `json:"password" validate:"required"`
	Confirmation string `json:"confirmation" validate:"required"`
}

// ExportData is the full read-only snapshot of an account.
type ExportData struct {
	User       *domain.User    `json:"user"`
	Entries    []*domain.Entry `json:"entries"`
	ExportedAt time.Time       `json:"exported_at"`
}

func NewUserService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	entryRepo repository.EntryRepository,
	backupRepo repository.BackupCodeRepository,
	mfaService *MFAService,
	emailService email.EmailService,
	hasher *hash.Hasher,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		entryRepo:    entryRepo,
		backupRepo:   backupRepo,
		mfaService:   mfaService,
		emailService: emailService,
		hasher:       hasher,
		cfg:          cfg,
	}
}

// SetAuthService sets the auth service (to avoid circular dependency)
func (s *UserService) SetAuthService(authService *AuthService) {
	s.authService = authService
}

// Register creates a new account. The email is the immutable lowercased
// key; the password must pass the strength policy.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := password.Check(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Theme:        domain.ThemeLight,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on lower(email) is the authority on duplicates
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(ctx, user.Email); err != nil {
			log.Printf("[USER_SERVICE] Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

// GetProfile returns the identity for the authenticated user.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePreferences patches the preference bag.
func (s *UserService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req PreferencesRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.ReminderOptIn != nil {
		user.ReminderOptIn = *req.ReminderOptIn
	}
	if req.Theme != nil {
		user.Theme = domain.Theme(*req.Theme)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password, enforces the strength
// policy on the new one and signs the user out of every device.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	if err := password.Check(req.NewPassword); err != nil {
		return err
	}

	if s.hasher.Verify(req.NewPassword, user.PasswordHash) {
		return domain.NewValidationError(domain.FieldError{
			Field:  "new_password",
			Reason: "must differ from the current password",
		})
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Forced re-login on all devices
	if err := s.authService.RevokeAllSessions(ctx, userID); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordChangedEmail(ctx, user.Email); err != nil {
			log.Printf("[USER_SERVICE] Failed to send password changed email to %s: %v", user.Email, err)
		}
	}

	return nil
}

// DisableMFA requires both the password and a current code before
// clearing the second factor.
func (s *UserService) DisableMFA(ctx context.Context, userID uuid.UUID, pass, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	return s.mfaService.Disable(ctx, user, code)
}

// DeleteAccount destroys the identity and everything it owns. The
// cascade removes entries, sessions and backup codes before the user
// row. Not reversible.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID, req DeleteAccountRequest) error {
	if req.Confirmation != ConfirmationPhrase {
		return domain.NewValidationError(domain.FieldError{
			Field:  "confirmation",
			Reason: `must be exactly "` + ConfirmationPhrase + `"`,
		})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	if err := s.entryRepo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.backupRepo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

// ExportAll aggregates the identity snapshot and every entry. Read
// only; secrets never leave the store (hidden by the json tags).
func (s *UserService) ExportAll(ctx context.Context, userID uuid.UUID, format string) (*ExportData, error) {
	if format != "" && format != "json" {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:  "format",
			Reason: "only json export is supported",
		})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		User:       user,
		Entries:    entries,
		ExportedAt: time.Now(),
	}, nil
}
