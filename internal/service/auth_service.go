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
	"github.com/daybook-app/daybook/pkg/hash"
	"github.com/daybook-app/daybook/pkg/jwt"
)

// TokenBlacklister is the write side of the access-token blacklist,
// satisfied by blacklist.TokenBlacklist.
type TokenBlacklister interface {
	AddAccessToken(ctx context.Context, token string, expiresAt time.Time) error
	BlacklistUser(ctx context.Context, userID string, ttl time.Duration) error
}

type AuthService struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	mfaService     *MFAService
	tokenService   *jwt.TokenService
	tokenBlacklist TokenBlacklister
	hasher         *hash.Hasher
	cfg            *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	MFACode  string `json:"mfa_code,omitempty"`

	// Connection metadata recorded on the session row
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type LoginResponse struct {
	Tokens *domain.TokenPair `json:"tokens,omitempty"`
	User   *domain.User      `json:"user,omitempty"`

	// MFARequired marks the intentionally distinguishable "second
	// factor needed" signal; no tokens are issued alongside it.
	MFARequired bool `json:"mfa_required,omitempty"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	mfaService *MFAService,
	tokenService *jwt.TokenService,
	tokenBlacklist TokenBlacklister,
	hasher *hash.Hasher,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		mfaService:     mfaService,
		tokenService:   tokenService,
		tokenBlacklist: tokenBlacklist,
		hasher:         hasher,
		cfg:            cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		if err := s.recordFailedAttempt(ctx, user); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if req.MFACode == "" {
			return &LoginResponse{MFARequired: true}, nil
		}
		if !s.mfaService.CheckCode(ctx, user, req.MFACode) {
			if err := s.recordFailedAttempt(ctx, user); err != nil {
				return nil, err
			}
			return nil, domain.ErrInvalidCredentials
		}
	}

	// Fully authenticated (password plus second factor when enabled):
	// only now does the failure counter reset
	if user.FailedLogins > 0 || user.LockedUntil != nil {
		if err := s.userRepo.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	// Opportunistic cleanup of dead sessions
	if err := s.sessionRepo.PruneExpired(ctx, user.ID); err != nil {
		log.Printf("[AUTH_SERVICE] Failed to prune sessions for %s: %v", user.ID, err)
	}

	tokens, err := s.issuePair(ctx, user, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[AUTH_SERVICE] Failed to update last login for %s: %v", user.ID, err)
	}

	return &LoginResponse{Tokens: tokens, User: user}, nil
}

// issuePair mints an access/refresh pair and persists the refresh side.
// Multiple sessions per user may coexist (multi-device).
func (s *AuthService) issuePair(ctx context.Context, user *domain.User, userAgent, ipAddress string) (*domain.TokenPair, error) {
	tokens, err := s.tokenService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: hashToken(tokens.RefreshToken),
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		Active:           true,
		ExpiresAt:        time.Now().Add(s.tokenService.RefreshExpiry()),
		CreatedAt:        time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return tokens, nil
}

// RefreshAccess validates a refresh token and issues a new access
// token. The refresh token itself is NOT rotated: it stays valid until
// its natural expiry or explicit logout.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	if !session.Usable(time.Now()) {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// Logout revokes the refresh session and blacklists the presented
// access token for its remaining lifetime. Idempotent: revoking an
// already-inactive or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if accessToken != "" {
		if claims, err := s.tokenService.ValidateToken(accessToken); err == nil && claims.ExpiresAt != nil {
			if err := s.tokenBlacklist.AddAccessToken(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
				log.Printf("[AUTH_SERVICE] Failed to blacklist access token: %v", err)
			}
		}
	}

	return s.sessionRepo.Revoke(ctx, hashToken(refreshToken))
}

// RevokeAllSessions signs the user out everywhere: every refresh
// session is revoked and outstanding access tokens are invalidated.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	// Marker must outlive the longest access token
	return s.tokenBlacklist.BlacklistUser(ctx, userID.String(), 24*time.Hour)
}

// recordFailedAttempt bumps the failure counter and locks the account
// on the configured threshold. An expired lock never carries over: the
// counter restarts at 1.
func (s *AuthService) recordFailedAttempt(ctx context.Context, user *domain.User) error {
	now := time.Now()

	if user.LockedUntil != nil && !now.Before(*user.LockedUntil) {
		user.FailedLogins = 1
		user.LockedUntil = nil
		return s.userRepo.Update(ctx, user)
	}

	count, err := s.userRepo.IncrementFailedLogins(ctx, user.ID)
	if err != nil {
		return err
	}

	if count >= s.cfg.Auth.MaxFailedLogins {
		lockUntil := now.Add(s.cfg.Auth.LockDuration)
		user.FailedLogins = count
		user.LockedUntil = &lockUntil
		return s.userRepo.Update(ctx, user)
	}

	return nil
}
