package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

var _ model.Mailer = (*Log)(nil)

// Log is a development mailer. Metadata goes to the logger, the body to out.
type Log struct {
	logger *logger.Logger
	out    io.Writer
}

func NewLog(l *logger.Logger, out io.Writer) *Log {
	return &Log{logger: l, out: out}
}

func (m *Log) Send(_ context.Context, email model.Email) (string, error) {
	id := uuid.NewString()
	m.logger.Info("Mailer: email captured", "id", id, "to", email.To, "subject", email.Subject)
	if _, err := fmt.Fprintf(m.out, "--- email %s to %s ---\n%s\n", id, email.To, email.HTML); err != nil {
		return "", fmt.Errorf("log mailer: %w", err)
	}
	return id, nil
}
