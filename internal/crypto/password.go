package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// MinPasswordLength is the shortest password accepted for encryption.
const MinPasswordLength = 12

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

const (
	msgPasswordLength    = "Password must be at least 12 characters long"
	msgPasswordUppercase = "Password must contain at least one uppercase letter"
	msgPasswordLowercase = "Password must contain at least one lowercase letter"
	msgPasswordNumber    = "Password must contain at least one number"
	msgPasswordSymbol    = "Password must contain at least one special character"
)

// ValidatePasswordStrength checks every password rule and reports all violations.
func ValidatePasswordStrength(password string) model.PasswordStrength {
	var errs []string

	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, msgPasswordLength)
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		errs = append(errs, msgPasswordUppercase)
	}
	if !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") {
		errs = append(errs, msgPasswordLowercase)
	}
	if !strings.ContainsAny(password, "0123456789") {
		errs = append(errs, msgPasswordNumber)
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		errs = append(errs, msgPasswordSymbol)
	}

	return model.PasswordStrength{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

func checkPasswordLength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &model.WeakPasswordError{Violations: []string{msgPasswordLength}}
	}
	return nil
}

// HashPassword derives a salted verifier for password with the cipher's KDF.
func (c *Cipher) HashPassword(password string) (model.PasswordDigest, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return model.PasswordDigest{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := deriveKey([]byte(password), salt, c.kdf)
	if err != nil {
		return model.PasswordDigest{}, fmt.Errorf("failed to derive password hash: %w", err)
	}

	return model.PasswordDigest{
		Salt: hex.EncodeToString(salt),
		Hash: hex.EncodeToString(hash),
		KDF:  c.kdf,
	}, nil
}

// VerifyPassword reports whether candidate matches digest.
func VerifyPassword(digest model.PasswordDigest, candidate string) bool {
	salt, err := hex.DecodeString(digest.Salt)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(digest.Hash)
	if err != nil || len(want) == 0 {
		return false
	}

	got, err := deriveKey([]byte(candidate), salt, digest.KDF)
	if err != nil {
		return false
	}
	defer clear(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}
