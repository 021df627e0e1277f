package model

// SecretPayload is the wallet secret protected by a backup.
type SecretPayload struct {
	PrivateKey string `json:"stxPrivateKey"`
	Address    string `json:"address"`
	Mnemonic   string `json:"mnemonic"`
}

// Complete reports whether every required field is present.
func (p SecretPayload) Complete() bool {
	return p.PrivateKey != "" && p.Address != "" && p.Mnemonic != ""
}

// KDF algorithm names recorded in KDFParams.Alg.
const (
	KDFPBKDF2SHA256 = "pbkdf2-sha256"
	KDFArgon2id     = "argon2id"
)

// KDFParams describes how a key was derived from a password.
// Iterations is used by PBKDF2, Time/MemKiB/Par by argon2id.
type KDFParams struct {
	Alg        string `json:"alg"`
	Iterations uint32 `json:"iterations,omitempty"`
	Time       uint32 `json:"time,omitempty"`
	MemKiB     uint32 `json:"memKiB,omitempty"`
	Par        uint8  `json:"par,omitempty"`
}

// EncryptedPayload is the stored form of a SecretPayload.
// Salt and IV are hex encoded, Ciphertext is standard base64.
type EncryptedPayload struct {
	Ciphertext string    `json:"ciphertext"`
	Salt       string    `json:"salt"`
	IV         string    `json:"iv"`
	KDF        KDFParams `json:"kdf"`
}

// Same reports whether two payloads are the same encryption.
func (e EncryptedPayload) Same(other EncryptedPayload) bool {
	return e.Ciphertext == other.Ciphertext && e.Salt == other.Salt && e.IV == other.IV
}

// PasswordDigest is a salted, iterated password verifier.
type PasswordDigest struct {
	Salt string    `json:"salt"`
	Hash string    `json:"hash"`
	KDF  KDFParams `json:"kdf"`
}

// PasswordStrength is the result of a password policy check.
type PasswordStrength struct {
	IsValid bool
	Errors  []string
}
