package recoveryrpc

// Wallet is the plaintext wallet secret.
type Wallet struct {
	PrivateKey string `json:"private_key"`
	Address    string `json:"address"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}

type IssueBackupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Wallet   *Wallet `json:"wallet"`
}

type IssueBackupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EmailID string `json:"email_id"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

type RedeemBackupRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type RedeemBackupResponse struct {
	Wallet *Wallet `json:"wallet"`
}
