package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/kapu-recovery/internal/model"
)

var _ model.BackupStore = (*BackupRepository)(nil)

// BackupRepository stores backups in the recovery_backups table.
type BackupRepository struct {
	db  querier
	now func() time.Time
}

func NewBackupRepository(db *Connection) *BackupRepository {
	return newBackupRepository(db)
}

func newBackupRepository(db querier) *BackupRepository {
	return &BackupRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *BackupRepository) Put(ctx context.Context, backup model.Backup) error {
	query := `
		INSERT INTO recovery_backups (token, ciphertext, salt, iv, kdf, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token) DO UPDATE SET
			ciphertext = EXCLUDED.ciphertext,
			salt = EXCLUDED.salt,
			iv = EXCLUDED.iv,
			kdf = EXCLUDED.kdf,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	kdf, err := json.Marshal(backup.Payload.KDF)
	if err != nil {
		return fmt.Errorf("failed to encode kdf params: %w", err)
	}

	createdAt := backup.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	_, err = r.db.Exec(ctx, query,
		backup.Token, backup.Payload.Ciphertext, backup.Payload.Salt, backup.Payload.IV,
		kdf, createdAt, backup.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert backup: %w", err)
	}

	return nil
}

func (r *BackupRepository) Get(ctx context.Context, token string) (model.Backup, error) {
	query := `
		SELECT token, ciphertext, salt, iv, kdf, created_at, expires_at
		FROM recovery_backups
		WHERE token = $1`

	var (
		backup model.Backup
		kdf    []byte
	)
	err := r.db.QueryRow(ctx, query, token).Scan(
		&backup.Token, &backup.Payload.Ciphertext, &backup.Payload.Salt, &backup.Payload.IV,
		&kdf, &backup.CreatedAt, &backup.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Backup{}, model.ErrNotFound
		}
		return model.Backup{}, fmt.Errorf("failed to get backup: %w", err)
	}

	if backup.Expired(r.now()) {
		if _, err := r.db.Exec(ctx,
			`DELETE FROM recovery_backups WHERE token = $1 AND expires_at = $2`,
			token, backup.ExpiresAt,
		); err != nil {
			return model.Backup{}, fmt.Errorf("failed to evict expired backup: %w", err)
		}
		return model.Backup{}, model.ErrNotFound
	}

	if len(kdf) > 0 {
		if err := json.Unmarshal(kdf, &backup.Payload.KDF); err != nil {
			return model.Backup{}, fmt.Errorf("failed to decode kdf params: %w", err)
		}
	}

	return backup, nil
}

func (r *BackupRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM recovery_backups WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

func (r *BackupRepository) CompareAndDelete(ctx context.Context, backup model.Backup) (bool, error) {
	query := `
		DELETE FROM recovery_backups
		WHERE token = $1 AND salt = $2 AND iv = $3 AND ciphertext = $4`

	cmd, err := r.db.Exec(ctx, query,
		backup.Token, backup.Payload.Salt, backup.Payload.IV, backup.Payload.Ciphertext,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete backup: %w", err)
	}

	return cmd.RowsAffected() == 1, nil
}

func (r *BackupRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM recovery_backups WHERE expires_at IS NOT NULL AND expires_at <= $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired backups: %w", err)
	}

	return int(cmd.RowsAffected()), nil
}
