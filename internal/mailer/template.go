// Package mailer delivers recovery emails through the configured provider.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// RecoverySubject is the subject line of recovery emails.
const RecoverySubject = "Your Kapu Wallet Recovery Link"

//go:embed templates/*.html
var templates embed.FS

var recoveryTemplate = template.Must(template.ParseFS(templates, "templates/recovery.html"))

// RenderRecoveryEmail builds the recovery email for to with link escaped into the body.
func RenderRecoveryEmail(to, link string) (model.Email, error) {
	var buf bytes.Buffer
	err := recoveryTemplate.Execute(&buf, struct {
		Link string
		Year int
	}{
		Link: link,
		Year: time.Now().Year(),
	})
	if err != nil {
		return model.Email{}, fmt.Errorf("failed to render recovery email: %w", err)
	}

	return model.Email{
		To:      to,
		Subject: RecoverySubject,
		HTML:    buf.String(),
	}, nil
}
