package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/domain"
)

type BackupCodeRepository interface {
	// Replace swaps the full backup-code set for a user in one call.
	Replace(ctx context.Context, userID uuid.UUID, codes []*domain.BackupCode) error
	GetUnused(ctx context.Context, userID uuid.UUID) ([]*domain.BackupCode, error)
	// MarkUsed consumes a single code; a code is never usable twice.
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
