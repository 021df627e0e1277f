// Package memory provides an in-process backup store. Entries do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/kapu-recovery/internal/model"
)

var _ model.BackupStore = (*BackupStore)(nil)

// BackupStore keeps backups in a map guarded by a mutex.
type BackupStore struct {
	mu      sync.Mutex
	backups map[string]model.Backup
	now     func() time.Time
}

// NewBackupStore creates an empty store.
func NewBackupStore() *BackupStore {
	return &BackupStore{
		backups: make(map[string]model.Backup),
		now:     time.Now,
	}
}

func (s *BackupStore) Put(ctx context.Context, backup model.Backup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if backup.CreatedAt.IsZero() {
		backup.CreatedAt = s.now()
	}
	s.backups[backup.Token] = backup
	return nil
}

func (s *BackupStore) Get(ctx context.Context, token string) (model.Backup, error) {
	if err := ctx.Err(); err != nil {
		return model.Backup{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup, ok := s.backups[token]
	if !ok {
		return model.Backup{}, model.ErrNotFound
	}
	if backup.Expired(s.now()) {
		delete(s.backups, token)
		return model.Backup{}, model.ErrNotFound
	}
	return backup, nil
}

func (s *BackupStore) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backups, token)
	return nil
}

func (s *BackupStore) CompareAndDelete(ctx context.Context, backup model.Backup) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.backups[backup.Token]
	if !ok || !current.Payload.Same(backup.Payload) {
		return false, nil
	}
	delete(s.backups, backup.Token)
	return true, nil
}

func (s *BackupStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for token, backup := range s.backups {
		if backup.Expired(now) {
			delete(s.backups, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *BackupStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backups)
}
