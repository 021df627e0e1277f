package model

import (
	"errors"
	"strings"
)

var (
	ErrWeakPassword     = errors.New("password does not meet requirements")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidPayload   = errors.New("invalid wallet data structure")
	ErrMalformedToken   = errors.New("malformed recovery token")
	ErrNotFound         = errors.New("not found")
	ErrAuthentication   = errors.New("invalid password")
	ErrDecryptionFailed = errors.New("failed to decrypt wallet data")
	ErrEmailDelivery    = errors.New("failed to send recovery email")
	ErrTooManyAttempts  = errors.New("too many attempts")
	ErrInternal         = errors.New("internal error")
)

// WeakPasswordError lists every violated password rule.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return ErrWeakPassword.Error() + ": " + strings.Join(e.Violations, "; ")
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

// EmailDeliveryError reports a failed recovery email. The backup stays stored.
type EmailDeliveryError struct {
	Err error
}

func (e *EmailDeliveryError) Error() string {
	return ErrEmailDelivery.Error() + ": " + e.Err.Error()
}

func (e *EmailDeliveryError) Unwrap() []error {
	return []error{ErrEmailDelivery, e.Err}
}
