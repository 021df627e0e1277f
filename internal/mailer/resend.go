package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/dtroode/kapu-recovery/internal/model"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var _ model.Mailer = (*Resend)(nil)

// Resend sends email through the Resend HTTP API.
type Resend struct {
	emails resendEmails
	from   string
}

// NewResend creates a mailer authenticated with apiKey.
func NewResend(apiKey, from string) *Resend {
	return &Resend{
		emails: resend.NewClient(apiKey).Emails,
		from:   from,
	}
}

func (m *Resend) Send(ctx context.Context, email model.Email) (string, error) {
	sent, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}
