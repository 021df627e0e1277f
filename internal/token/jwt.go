package token

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// Claims represents unlock ticket claims.
type Claims struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"fpr"`
	TokenType   string `json:"typ"`
}

// JWT implements TicketManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a ticket manager with the provided secret key.
func NewJWT(secretKey []byte, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

// NewEphemeralJWT creates a ticket manager with a random key that lives only
// as long as the process, so tickets die with it.
func NewEphemeralJWT(ttl time.Duration) (*JWT, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate ticket key: %w", err)
	}
	return NewJWT(key, ttl), nil
}

const typeUnlock = "unlock"

var _ model.TicketManager = (*JWT)(nil)

// IssueUnlockTicket creates a ticket bound to address and the password digest fingerprint.
func (j *JWT) IssueUnlockTicket(address, fingerprint string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Fingerprint: fingerprint,
		TokenType:   typeUnlock,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign unlock ticket: %w", err)
	}

	return tokenString, nil
}

// ParseUnlockTicket validates a ticket and returns its address and fingerprint.
func (j *JWT) ParseUnlockTicket(ticket string) (string, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse unlock ticket: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("unlock ticket is invalid")
	}
	if claims.TokenType != typeUnlock {
		return "", "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.Subject, claims.Fingerprint, nil
}
