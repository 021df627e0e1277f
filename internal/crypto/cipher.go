package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// Cipher encrypts wallet secrets under password-derived keys
// using AES-256-CBC with PKCS#7 padding.
type Cipher struct {
	kdf  model.KDFParams
	rand io.Reader
}

// NewCipher creates a Cipher that derives keys with kdf for new encryptions.
// Decryption always uses the parameters recorded in the payload.
func NewCipher(kdf model.KDFParams) (*Cipher, error) {
	if err := ValidateKDF(kdf); err != nil {
		return nil, fmt.Errorf("invalid kdf params: %w", err)
	}
	return &Cipher{kdf: kdf, rand: rand.Reader}, nil
}

// KDF returns the parameters used for new encryptions.
func (c *Cipher) KDF() model.KDFParams {
	return c.kdf
}

// Encrypt encrypts payload with a key derived from password and a fresh salt and IV.
func (c *Cipher) Encrypt(payload model.SecretPayload, password string) (model.EncryptedPayload, error) {
	if err := checkPasswordLength(password); err != nil {
		return model.EncryptedPayload{}, err
	}

	// Generate salt and IV
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return model.EncryptedPayload{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return model.EncryptedPayload{}, fmt.Errorf("failed to generate iv: %w", err)
	}

	key, err := deriveKey([]byte(password), salt, c.kdf)
	if err != nil {
		return model.EncryptedPayload{}, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return model.EncryptedPayload{}, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return model.EncryptedPayload{}, fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	defer clear(plaintext)

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer clear(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return model.EncryptedPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(iv),
		KDF:        c.kdf,
	}, nil
}

// Decrypt recovers the payload. Every failure after the password length check
// is reported as model.ErrDecryptionFailed so a wrong password and corrupted
// data look the same to the caller.
func (c *Cipher) Decrypt(enc model.EncryptedPayload, password string) (model.SecretPayload, error) {
	if err := checkPasswordLength(password); err != nil {
		return model.SecretPayload{}, err
	}

	kdf := enc.KDF
	if kdf.Alg == "" {
		kdf = c.kdf
	}

	salt, err := hex.DecodeString(enc.Salt)
	if err != nil || len(salt) == 0 {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	iv, err := hex.DecodeString(enc.IV)
	if err != nil || len(iv) != aes.BlockSize {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(enc.Ciphertext)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	key, err := deriveKey([]byte(password), salt, kdf)
	if err != nil {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	defer clear(padded)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil || !utf8.Valid(plaintext) {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	var payload model.SecretPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return model.SecretPayload{}, model.ErrDecryptionFailed
	}

	return payload, nil
}

var errInvalidPadding = errors.New("invalid padding")

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errInvalidPadding
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errInvalidPadding
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}
