package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)
	// Revoke flips active=false; the row stays until pruned.
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	// PruneExpired deletes rows that are inactive or past expiry.
	PruneExpired(ctx context.Context, userID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
