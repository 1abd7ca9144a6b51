package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/pkg/totp"
)

const backupCodeCount = 10

// MFASetupResponse carries the provisioning payload and the raw backup
// codes. Both are returned exactly once; only hashes are stored.
type MFASetupResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	BackupCodes     []string `json:"backup_codes"`
}

type MFAService struct {
	userRepo   repository.UserRepository
	backupRepo repository.BackupCodeRepository
	generator  *totp.Generator
}

func NewMFAService(userRepo repository.UserRepository, backupRepo repository.BackupCodeRepository, generator *totp.Generator) *MFAService {
	return &MFAService{
		userRepo:   userRepo,
		backupRepo: backupRepo,
		generator:  generator,
	}
}

// Setup provisions a fresh secret and backup codes. MFA stays disabled
// until a subsequent Verify succeeds.
func (s *MFAService) Setup(ctx context.Context, userID uuid.UUID) (*MFASetupResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.MFAEnabled {
		return nil, &domain.ConflictError{Message: "mfa is already enabled"}
	}

	secret, uri, err := s.generator.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}

	rawCodes := make([]string, 0, backupCodeCount)
	codes := make([]*domain.BackupCode, 0, backupCodeCount)
	now := time.Now()
	for i := 0; i < backupCodeCount; i++ {
		raw, err := generateBackupCode()
		if err != nil {
			return nil, err
		}
		rawCodes = append(rawCodes, raw)
		codes = append(codes, &domain.BackupCode{
			ID:        uuid.New(),
			UserID:    userID,
			CodeHash:  hashToken(raw),
			CreatedAt: now,
		})
	}

	user.MFASecret = &secret
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.backupRepo.Replace(ctx, userID, codes); err != nil {
		return nil, err
	}

	return &MFASetupResponse{
		Secret:          secret,
		ProvisioningURI: uri,
		BackupCodes:     rawCodes,
	}, nil
}

// Verify validates a time-based code against the pending secret and
// flips MFA on.
func (s *MFAService) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.MFASecret == nil {
		return &domain.ConflictError{Message: "mfa setup has not been started"}
	}

	if !s.generator.Verify(code, *user.MFASecret) {
		return domain.ErrInvalidCredentials
	}

	user.MFAEnabled = true
	return s.userRepo.Update(ctx, user)
}

// Disable clears the secret, backup codes and enabled flag. The caller
// verifies the password; the current code is checked here.
func (s *MFAService) Disable(ctx context.Context, user *domain.User, code string) error {
	if !user.MFAEnabled || user.MFASecret == nil {
		return &domain.ConflictError{Message: "mfa is not enabled"}
	}

	if !s.CheckCode(ctx, user, code) {
		return domain.ErrInvalidCredentials
	}

	user.MFAEnabled = false
	user.MFASecret = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.backupRepo.DeleteAllForUser(ctx, user.ID)
}

// CheckCode accepts either a current TOTP code or an unused backup
// code; a matching backup code is consumed.
func (s *MFAService) CheckCode(ctx context.Context, user *domain.User, code string) bool {
	if user.MFASecret != nil && s.generator.Verify(code, *user.MFASecret) {
		return true
	}

	codes, err := s.backupRepo.GetUnused(ctx, user.ID)
	if err != nil {
		return false
	}

	hashed := hashToken(code)
	for _, backup := range codes {
		if backup.CodeHash == hashed {
			return s.backupRepo.MarkUsed(ctx, backup.ID) == nil
		}
	}

	return false
}

// generateBackupCode returns an 8-hex-char single-use code.
func generateBackupCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashToken creates a SHA-256 hash of a token or backup code.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
