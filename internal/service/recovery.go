package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dtroode/kapu-recovery/internal/crypto"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/mailer"
	"github.com/dtroode/kapu-recovery/internal/metrics"
	"github.com/dtroode/kapu-recovery/internal/model"
	"github.com/dtroode/kapu-recovery/internal/token"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Cipher encrypts and decrypts wallet secrets.
type Cipher interface {
	Encrypt(payload model.SecretPayload, password string) (model.EncryptedPayload, error)
	Decrypt(enc model.EncryptedPayload, password string) (model.SecretPayload, error)
}

// Metrics receives operation outcomes.
type Metrics interface {
	Operation(name, outcome string)
	CipherDuration(name string, d time.Duration)
	Purged(n int)
}

const (
	opIssue    = "issue"
	opValidate = "validate"
	opRedeem   = "redeem"
)

// RecoveryConfig holds recovery settings.
type RecoveryConfig struct {
	// BaseURL is the trusted origin recovery links point at.
	BaseURL string
	// TokenTTL bounds backup lifetime. Zero keeps backups until redeemed.
	TokenTTL time.Duration
}

// Recovery issues, validates and redeems encrypted wallet backups.
type Recovery struct {
	store    model.BackupStore
	cipher   Cipher
	tokens   model.TokenGenerator
	mailer   model.Mailer
	limiter  *AttemptLimiter
	metrics  Metrics
	logger   *logger.Logger
	baseURL  string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewRecovery(
	store model.BackupStore,
	cipher Cipher,
	tokens model.TokenGenerator,
	mailer model.Mailer,
	limiter *AttemptLimiter,
	metrics Metrics,
	logger *logger.Logger,
	cfg RecoveryConfig,
) *Recovery {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Recovery{
		store:    store,
		cipher:   cipher,
		tokens:   tokens,
		mailer:   mailer,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
		baseURL:  cfg.BaseURL,
		tokenTTL: cfg.TokenTTL,
		now:      time.Now,
	}
}

// IssueBackup encrypts the wallet, stores it under a new token and emails the recovery link.
// A failed email keeps the stored backup and returns *model.EmailDeliveryError with the result filled in.
func (s *Recovery) IssueBackup(ctx context.Context, req model.IssueRequest) (model.IssueResult, error) {
	s.logger.Debug("Recovery service: issuing backup",
		"email", req.Email)

	if !emailPattern.MatchString(req.Email) {
		s.metrics.Operation(opIssue, metrics.OutcomeInvalid)
		return model.IssueResult{}, model.ErrInvalidEmail
	}

	if strength := crypto.ValidatePasswordStrength(req.Password); !strength.IsValid {
		s.metrics.Operation(opIssue, metrics.OutcomeInvalid)
		return model.IssueResult{}, &model.WeakPasswordError{Violations: strength.Errors}
	}

	if !req.Payload.Complete() {
		s.metrics.Operation(opIssue, metrics.OutcomeInvalid)
		return model.IssueResult{}, model.ErrInvalidPayload
	}

	started := time.Now()
	enc, err := s.cipher.Encrypt(req.Payload, req.Password)
	s.metrics.CipherDuration("encrypt", time.Since(started))
	if err != nil {
		s.logger.Error("Recovery service: failed to encrypt wallet",
			"error", err.Error())
		return model.IssueResult{}, s.internal(opIssue, "failed to encrypt wallet")
	}

	tok, err := s.tokens.Generate(req.Payload)
	if err != nil {
		s.logger.Error("Recovery service: failed to generate token",
			"error", err.Error())
		return model.IssueResult{}, s.internal(opIssue, "failed to generate token")
	}

	now := s.now()
	backup := model.Backup{
		Token:     tok,
		Payload:   enc,
		CreatedAt: now,
	}
	if s.tokenTTL > 0 {
		expires := now.Add(s.tokenTTL)
		backup.ExpiresAt = &expires
	}

	if err := s.store.Put(ctx, backup); err != nil {
		s.logger.Error("Recovery service: failed to store backup",
			"error", err.Error())
		return model.IssueResult{}, s.internal(opIssue, "failed to store backup")
	}

	result := model.IssueResult{
		Token:        tok,
		RecoveryLink: s.baseURL + "/auth/recover?token=" + tok,
	}

	email, err := mailer.RenderRecoveryEmail(req.Email, result.RecoveryLink)
	if err != nil {
		s.logger.Error("Recovery service: failed to render email",
			"error", err.Error())
		return model.IssueResult{}, s.internal(opIssue, "failed to render email")
	}

	id, err := s.mailer.Send(ctx, email)
	if err != nil {
		s.logger.Error("Recovery service: failed to send recovery email",
			"email", req.Email,
			"error", err.Error())
		s.metrics.Operation(opIssue, metrics.OutcomeError)
		return result, &model.EmailDeliveryError{Err: err}
	}
	result.EmailID = id

	s.logger.Info("Recovery service: backup issued",
		"email", req.Email,
		"email_id", id)
	s.metrics.Operation(opIssue, metrics.OutcomeOK)

	return result, nil
}

// ValidateToken reports whether a backup exists for raw without changing anything.
func (s *Recovery) ValidateToken(ctx context.Context, raw string) error {
	tok, err := token.Normalize(raw)
	if err != nil {
		s.metrics.Operation(opValidate, metrics.OutcomeInvalid)
		return err
	}

	if _, err := s.store.Get(ctx, tok); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.metrics.Operation(opValidate, metrics.OutcomeNotFound)
			return model.ErrNotFound
		}
		s.logger.Error("Recovery service: failed to look up backup",
			"error", err.Error())
		return s.internal(opValidate, "failed to look up backup")
	}

	s.metrics.Operation(opValidate, metrics.OutcomeOK)
	return nil
}

// RedeemBackup decrypts the backup for raw with password and erases it.
// Only one caller can redeem a given backup.
func (s *Recovery) RedeemBackup(ctx context.Context, raw, password string) (model.SecretPayload, error) {
	tok, err := token.Normalize(raw)
	if err != nil {
		s.metrics.Operation(opRedeem, metrics.OutcomeInvalid)
		return model.SecretPayload{}, err
	}

	backup, err := s.store.Get(ctx, tok)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.metrics.Operation(opRedeem, metrics.OutcomeNotFound)
			return model.SecretPayload{}, model.ErrNotFound
		}
		s.logger.Error("Recovery service: failed to look up backup",
			"error", err.Error())
		return model.SecretPayload{}, s.internal(opRedeem, "failed to look up backup")
	}

	if s.limiter.Exhausted(tok) {
		s.logger.Warn("Recovery service: redeem attempts exhausted")
		s.metrics.Operation(opRedeem, metrics.OutcomeLimited)
		return model.SecretPayload{}, model.ErrTooManyAttempts
	}

	started := time.Now()
	payload, err := s.cipher.Decrypt(backup.Payload, password)
	s.metrics.CipherDuration("decrypt", time.Since(started))
	if err != nil {
		s.limiter.Fail(tok)
		s.logger.Info("Recovery service: decryption failed",
			"error", err.Error())
		s.metrics.Operation(opRedeem, metrics.OutcomeDenied)
		return model.SecretPayload{}, model.ErrAuthentication
	}

	deleted, err := s.store.CompareAndDelete(ctx, backup)
	if err != nil {
		s.logger.Error("Recovery service: failed to consume backup",
			"error", err.Error())
		return model.SecretPayload{}, s.internal(opRedeem, "failed to consume backup")
	}
	if !deleted {
		s.logger.Info("Recovery service: backup already redeemed")
		s.metrics.Operation(opRedeem, metrics.OutcomeNotFound)
		return model.SecretPayload{}, model.ErrNotFound
	}

	s.limiter.Forget(tok)
	s.logger.Info("Recovery service: backup redeemed",
		"address", payload.Address)
	s.metrics.Operation(opRedeem, metrics.OutcomeOK)

	return payload, nil
}

func (s *Recovery) internal(op, msg string) error {
	s.metrics.Operation(op, metrics.OutcomeError)
	return fmt.Errorf("%s: %w", msg, model.ErrInternal)
}

type noopMetrics = metrics.Noop
