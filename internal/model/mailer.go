package model

import "context"

// Email is an outbound HTML message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers email and returns the provider message ID.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}
