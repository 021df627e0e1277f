package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/dtroode/kapu-recovery/internal/model"
)

const (
	keyLen  = 32
	saltLen = 32

	// Legacy parameters kept so backups written by the web client stay readable.
	defaultPBKDF2Iterations = 10000

	maxPBKDF2Iterations = 10_000_000
	maxArgon2Time       = 64
	maxArgon2MemKiB     = 4 * 1024 * 1024
)

// DefaultKDF returns the PBKDF2-SHA256 parameters used by existing backups.
func DefaultKDF() model.KDFParams {
	return model.KDFParams{
		Alg:        model.KDFPBKDF2SHA256,
		Iterations: defaultPBKDF2Iterations,
	}
}

// Argon2idKDF returns argon2id parameters for new deployments.
func Argon2idKDF(time, memKiB uint32, par uint8) model.KDFParams {
	return model.KDFParams{
		Alg:    model.KDFArgon2id,
		Time:   time,
		MemKiB: memKiB,
		Par:    par,
	}
}

// ValidateKDF checks that params name a supported algorithm with sane bounds.
func ValidateKDF(p model.KDFParams) error {
	switch p.Alg {
	case model.KDFPBKDF2SHA256:
		if p.Iterations == 0 || p.Iterations > maxPBKDF2Iterations {
			return fmt.Errorf("pbkdf2 iterations out of range: %d", p.Iterations)
		}
	case model.KDFArgon2id:
		if p.Time == 0 || p.Time > maxArgon2Time {
			return fmt.Errorf("argon2id time out of range: %d", p.Time)
		}
		if p.MemKiB < 8*uint32(max(p.Par, 1)) || p.MemKiB > maxArgon2MemKiB {
			return fmt.Errorf("argon2id memory out of range: %d KiB", p.MemKiB)
		}
		if p.Par == 0 {
			return fmt.Errorf("argon2id parallelism must be positive")
		}
	default:
		return fmt.Errorf("unsupported kdf %q", p.Alg)
	}
	return nil
}

// deriveKey turns password and salt into a 256-bit key.
func deriveKey(password, salt []byte, p model.KDFParams) ([]byte, error) {
	if err := ValidateKDF(p); err != nil {
		return nil, err
	}

	switch p.Alg {
	case model.KDFArgon2id:
		return argon2.IDKey(password, salt, p.Time, p.MemKiB, p.Par, keyLen), nil
	default:
		return pbkdf2.Key(password, salt, int(p.Iterations), keyLen, sha256.New), nil
	}
}
