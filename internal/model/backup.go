package model

import (
	"context"
	"time"
)

// BackupStore persists encrypted backups keyed by recovery token.
type BackupStore interface {
	// Put stores the backup, replacing any entry with the same token.
	Put(ctx context.Context, backup Backup) error
	// Get returns ErrNotFound for absent or expired tokens.
	Get(ctx context.Context, token string) (Backup, error)
	// Delete is idempotent.
	Delete(ctx context.Context, token string) error
	// CompareAndDelete removes the entry only if it still holds backup.Payload.
	// The returned flag tells whether this call removed it.
	CompareAndDelete(ctx context.Context, backup Backup) (bool, error)
	// PurgeExpired removes entries that expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// Backup is a stored encrypted wallet backup.
type Backup struct {
	Token     string
	Payload   EncryptedPayload
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the backup is past its expiry at now.
func (b Backup) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && !now.Before(*b.ExpiresAt)
}

// IssueRequest contains parameters to issue a backup.
type IssueRequest struct {
	Email    string
	Password string
	Payload  SecretPayload
}

// IssueResult describes an issued backup.
type IssueResult struct {
	Token        string
	RecoveryLink string
	EmailID      string
}

// TokenGenerator derives recovery tokens for payloads.
type TokenGenerator interface {
	Generate(payload SecretPayload) (string, error)
}
