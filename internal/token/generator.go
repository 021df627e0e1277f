package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// Length is the length of a recovery token in hex characters.
const Length = 2 * sha256.Size

const (
	StrategyRandom        = "random"
	StrategyDeterministic = "deterministic"
)

// New returns the generator for strategy.
func New(strategy string) (model.TokenGenerator, error) {
	switch strategy {
	case "", StrategyRandom:
		return NewRandom(), nil
	case StrategyDeterministic:
		return NewDeterministic(), nil
	default:
		return nil, fmt.Errorf("unknown token strategy %q", strategy)
	}
}

// Random issues 256-bit tokens that are independent of the payload.
type Random struct {
	rand io.Reader
}

// NewRandom creates a Random generator reading from crypto/rand.
func NewRandom() *Random {
	return &Random{rand: rand.Reader}
}

// Generate returns a fresh random token.
func (g *Random) Generate(_ model.SecretPayload) (string, error) {
	b := make([]byte, sha256.Size)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Deterministic derives the token from the private key, so issuing a backup
// for the same key again replaces the previous one. Anyone holding the key
// can compute the token.
type Deterministic struct{}

// NewDeterministic creates a Deterministic generator.
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

// Generate returns hex(sha256(privateKey)).
func (g *Deterministic) Generate(payload model.SecretPayload) (string, error) {
	if payload.PrivateKey == "" {
		return "", fmt.Errorf("private key is required for deterministic token")
	}
	sum := sha256.Sum256([]byte(payload.PrivateKey))
	return hex.EncodeToString(sum[:]), nil
}

// Normalize checks the token shape and returns its lowercase form.
func Normalize(token string) (string, error) {
	if len(token) != Length {
		return "", model.ErrMalformedToken
	}
	for i := 0; i < len(token); i++ {
		if !isHex(token[i]) {
			return "", model.ErrMalformedToken
		}
	}
	return strings.ToLower(token), nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
