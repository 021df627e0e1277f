package handler

import "github.com/dtroode/kapu-recovery/internal/model"

// WalletData is the wallet secret as sent by clients.
type WalletData struct {
	StxPrivateKey string `json:"stxPrivateKey" example:"753b7cc01a1a2e86221266a154af739463fce51219d97e4f856cd7200c3bd2a601"`
	Address       string `json:"address" example:"SP1P72Z3704VMT3DMHPP2CB8TGQWGDBHD3RPR9GZS"`
	Mnemonic      string `json:"mnemonic"`
}

func (w WalletData) toModel() model.SecretPayload {
	return model.SecretPayload{
		PrivateKey: w.StxPrivateKey,
		Address:    w.Address,
		Mnemonic:   w.Mnemonic,
	}
}

func walletFromModel(p model.SecretPayload) WalletData {
	return WalletData{
		StxPrivateKey: p.PrivateKey,
		Address:       p.Address,
		Mnemonic:      p.Mnemonic,
	}
}

// SendWalletRequest is the body of POST /api/send-encrypted-wallet.
type SendWalletRequest struct {
	Email      string      `json:"email" example:"user@example.com"`
	Password   string      `json:"password"`
	WalletData *WalletData `json:"walletData"`
}

// SendWalletResponse confirms the recovery email was sent.
type SendWalletResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EmailID string `json:"emailId"`
}

// ValidateTokenRequest is the body of POST /api/validate-recovery-token.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse reports a live token.
type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

// RecoverWalletRequest is the body of POST /api/recover-wallet.
type RecoverWalletRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// RecoverWalletResponse carries the decrypted wallet.
type RecoverWalletResponse struct {
	Success bool       `json:"success"`
	Wallet  WalletData `json:"wallet"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
