// Package session keeps the local wallet session, optionally gated by a password.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/kapu-recovery/internal/crypto"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

var (
	ErrNoSession        = errors.New("no session")
	ErrLocked           = errors.New("session is locked")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrTooManyAttempts  = model.ErrTooManyAttempts
	ErrIncompleteRecord = errors.New("private key and address are required")
)

// State is the lifecycle state of the local session.
type State int

const (
	NoSession State = iota
	OpenSession
	LockedSession
	UnlockedSession
)

func (s State) String() string {
	switch s {
	case OpenSession:
		return "open"
	case LockedSession:
		return "locked"
	case UnlockedSession:
		return "unlocked"
	default:
		return "none"
	}
}

// Record is the durable session. It never expires.
type Record struct {
	PrivateKey        string                `json:"stxPrivateKey"`
	Address           string                `json:"address"`
	CreatedAt         time.Time             `json:"createdAt"`
	PasswordProtected bool                  `json:"passwordProtected,omitempty"`
	PasswordDigest    *model.PasswordDigest `json:"passwordDigest,omitempty"`
}

// RecordStore persists the single session record.
type RecordStore interface {
	// Load returns ErrNoSession when nothing is stored.
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, record Record) error
	Clear(ctx context.Context) error
}

// UnlockCache holds unlock tickets by address for the lifetime of the process.
type UnlockCache interface {
	Get(address string) (string, bool)
	Set(address, ticket string)
	Delete(address string)
}

// Hasher derives password digests.
type Hasher interface {
	HashPassword(password string) (model.PasswordDigest, error)
}

// CreateParams describe a new session. An empty Password creates an open session.
type CreateParams struct {
	PrivateKey string
	Address    string
	Password   string
}

// Status is the result of Check.
type Status struct {
	State  State
	Record Record
}

// Manager drives the session state machine.
type Manager struct {
	records RecordStore
	cache   UnlockCache
	hasher  Hasher
	tickets model.TicketManager
	limiter *rate.Limiter
	logger  *logger.Logger
	now     func() time.Time
}

// NewManager creates a Manager. limiter may be nil to allow unlimited unlock attempts.
func NewManager(
	records RecordStore,
	cache UnlockCache,
	hasher Hasher,
	tickets model.TicketManager,
	limiter *rate.Limiter,
	logger *logger.Logger,
) *Manager {
	return &Manager{
		records: records,
		cache:   cache,
		hasher:  hasher,
		tickets: tickets,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// Create replaces any existing session.
func (m *Manager) Create(ctx context.Context, params CreateParams) (State, error) {
	if params.PrivateKey == "" || params.Address == "" {
		return NoSession, ErrIncompleteRecord
	}

	if prev, err := m.records.Load(ctx); err == nil {
		m.cache.Delete(prev.Address)
	}

	record := Record{
		PrivateKey: params.PrivateKey,
		Address:    params.Address,
		CreatedAt:  m.now().UTC(),
	}
	state := OpenSession

	if params.Password != "" {
		digest, err := m.hasher.HashPassword(params.Password)
		if err != nil {
			return NoSession, fmt.Errorf("failed to hash session password: %w", err)
		}
		record.PasswordProtected = true
		record.PasswordDigest = &digest
		state = LockedSession
	}

	if err := m.records.Save(ctx, record); err != nil {
		return NoSession, fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.Info("Session: created",
		"address", record.Address,
		"state", state.String())

	return state, nil
}

// Check reports the current state without changing it, except that an
// unreadable unlock ticket is discarded.
func (m *Manager) Check(ctx context.Context) (Status, error) {
	record, err := m.records.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return Status{State: NoSession}, nil
		}
		return Status{}, err
	}

	if !record.PasswordProtected || record.PasswordDigest == nil {
		return Status{State: OpenSession, Record: record}, nil
	}

	ticket, ok := m.cache.Get(record.Address)
	if !ok {
		return Status{State: LockedSession, Record: record}, nil
	}

	address, fpr, err := m.tickets.ParseUnlockTicket(ticket)
	if err != nil || address != record.Address || fpr != fingerprint(*record.PasswordDigest) {
		m.logger.Debug("Session: dropping stale unlock ticket",
			"address", record.Address)
		m.cache.Delete(record.Address)
		return Status{State: LockedSession, Record: record}, nil
	}

	return Status{State: UnlockedSession, Record: record}, nil
}

// Unlock checks password against the stored digest and caches an unlock ticket on success.
func (m *Manager) Unlock(ctx context.Context, password string) error {
	status, err := m.Check(ctx)
	if err != nil {
		return err
	}

	switch status.State {
	case NoSession:
		return ErrNoSession
	case OpenSession, UnlockedSession:
		return nil
	}

	if m.limiter != nil && !m.limiter.Allow() {
		return ErrTooManyAttempts
	}

	digest := *status.Record.PasswordDigest
	if !crypto.VerifyPassword(digest, password) {
		m.logger.Info("Session: unlock failed",
			"address", status.Record.Address)
		return ErrInvalidPassword
	}

	ticket, err := m.tickets.IssueUnlockTicket(status.Record.Address, fingerprint(digest))
	if err != nil {
		return fmt.Errorf("failed to issue unlock ticket: %w", err)
	}
	m.cache.Set(status.Record.Address, ticket)

	m.logger.Info("Session: unlocked",
		"address", status.Record.Address)

	return nil
}

// Current returns the record if the session counts as logged in.
func (m *Manager) Current(ctx context.Context) (Record, error) {
	status, err := m.Check(ctx)
	if err != nil {
		return Record{}, err
	}

	switch status.State {
	case OpenSession, UnlockedSession:
		return status.Record, nil
	case LockedSession:
		return Record{}, ErrLocked
	default:
		return Record{}, ErrNoSession
	}
}

// SignOut clears the record and its unlock ticket.
func (m *Manager) SignOut(ctx context.Context) error {
	record, err := m.records.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	if err == nil {
		m.cache.Delete(record.Address)
	}

	if err := m.records.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.logger.Info("Session: signed out")
	return nil
}

// fingerprint binds tickets to one digest so a new password invalidates old tickets.
func fingerprint(d model.PasswordDigest) string {
	sum := sha256.Sum256([]byte(d.Salt + ":" + d.Hash))
	return hex.EncodeToString(sum[:])
}
