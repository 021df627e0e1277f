package mailer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/kapu-recovery/internal/model"
)

var _ model.Mailer = (*Outbox)(nil)

// Outbox writes rendered messages to object storage for an external relay to pick up.
type Outbox struct {
	storage model.ObjectStorage
	from    string
	prefix  string
}

func NewOutbox(storage model.ObjectStorage, from, prefix string) *Outbox {
	return &Outbox{storage: storage, from: from, prefix: prefix}
}

func (m *Outbox) Send(ctx context.Context, email model.Email) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	msg := buildMessage(m.from, email, id, now)

	key := path.Join(m.prefix, now.Format("2006/01/02"), id+".eml")
	if err := m.storage.Upload(ctx, key, bytes.NewReader(msg), int64(len(msg)), "message/rfc822"); err != nil {
		return "", fmt.Errorf("outbox: %w", err)
	}
	return id, nil
}
