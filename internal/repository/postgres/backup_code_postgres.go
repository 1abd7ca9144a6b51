package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
)

type backupCodeRepository struct {
	db *sqlx.DB
}

// NewBackupCodeRepository creates a new PostgreSQL backup code repository
func NewBackupCodeRepository(db *sqlx.DB) repository.BackupCodeRepository {
	return &backupCodeRepository{db: db}
}

// Replace swaps the full backup-code set for a user in one transaction
func (r *backupCodeRepository) Replace(ctx context.Context, userID uuid.UUID, codes []*domain.BackupCode) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear backup codes: %w", err)
	}

	insert := `
		INSERT INTO mfa_backup_codes (id, user_id, code_hash, used_at, created_at)
		VALUES (:id, :user_id, :code_hash, :used_at, :created_at)`
	for _, code := range codes {
		if _, err := tx.NamedExecContext(ctx, insert, code); err != nil {
			return fmt.Errorf("failed to insert backup code: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit backup codes: %w", err)
	}

	return nil
}

// GetUnused retrieves the remaining single-use codes for a user
func (r *backupCodeRepository) GetUnused(ctx context.Context, userID uuid.UUID) ([]*domain.BackupCode, error) {
	query := `
		SELECT id, user_id, code_hash, used_at, created_at
		FROM mfa_backup_codes
		WHERE user_id = $1 AND used_at IS NULL
		ORDER BY created_at`

	var codes []*domain.BackupCode
	err := r.db.SelectContext(ctx, &codes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get backup codes: %w", err)
	}

	return codes, nil
}

// MarkUsed consumes a code; the used_at guard keeps it single-use even
// under concurrent verification attempts
func (r *backupCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE mfa_backup_codes SET used_at = $1 WHERE id = $2 AND used_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark backup code used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return &domain.NotFoundError{Resource: "backup code"}
	}

	return nil
}

// DeleteAllForUser removes every backup code of a user
func (r *backupCodeRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM mfa_backup_codes WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete backup codes: %w", err)
	}

	return nil
}
