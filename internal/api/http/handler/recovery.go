// Package handler serves the recovery HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// RecoveryService defines the recovery operations exposed over HTTP.
type RecoveryService interface {
	IssueBackup(ctx context.Context, req model.IssueRequest) (model.IssueResult, error)
	ValidateToken(ctx context.Context, token string) error
	RedeemBackup(ctx context.Context, token, password string) (model.SecretPayload, error)
}

// Recovery handles the recovery endpoints.
type Recovery struct {
	service RecoveryService
	logger  *logger.Logger
}

// NewRecovery creates a new Recovery handler.
func NewRecovery(service RecoveryService, logger *logger.Logger) *Recovery {
	return &Recovery{service: service, logger: logger}
}

// SendEncryptedWallet handles POST /api/send-encrypted-wallet
// @Summary      Back up a wallet
// @Description  Encrypts the wallet with the password, stores it and emails a single-use recovery link. The token is only delivered by email.
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        request  body      SendWalletRequest  true  "Wallet backup"
// @Success      200      {object}  SendWalletResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/send-encrypted-wallet [post]
func (h *Recovery) SendEncryptedWallet(w http.ResponseWriter, r *http.Request) {
	var req SendWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.WalletData == nil {
		writeError(w, http.StatusBadRequest, "Email, password, and wallet data are required")
		return
	}

	res, err := h.service.IssueBackup(r.Context(), model.IssueRequest{
		Email:    req.Email,
		Password: req.Password,
		Payload:  req.WalletData.toModel(),
	})
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: failed to issue backup",
				"error", err.Error())
		}
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SendWalletResponse{
		Success: true,
		Message: "Recovery email sent successfully",
		EmailID: res.EmailID,
	})
}

// ValidateRecoveryToken handles POST /api/validate-recovery-token
// @Summary      Check a recovery token
// @Description  Reports whether a backup exists for the token. Has no side effects.
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        request  body      ValidateTokenRequest  true  "Token"
// @Success      200      {object}  ValidateTokenResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/validate-recovery-token [post]
func (h *Recovery) ValidateRecoveryToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.service.ValidateToken(r.Context(), req.Token); err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: failed to validate token",
				"error", err.Error())
		}
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateTokenResponse{Valid: true})
}

// RecoverWallet handles POST /api/recover-wallet
// @Summary      Redeem a recovery token
// @Description  Decrypts the backup with the password and erases it. Works once per token.
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        request  body      RecoverWalletRequest  true  "Token and password"
// @Success      200      {object}  RecoverWalletResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      429      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/recover-wallet [post]
func (h *Recovery) RecoverWallet(w http.ResponseWriter, r *http.Request) {
	var req RecoverWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Token and password are required")
		return
	}

	payload, err := h.service.RedeemBackup(r.Context(), req.Token, req.Password)
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: failed to recover wallet",
				"error", err.Error())
		}
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecoverWalletResponse{
		Success: true,
		Wallet:  walletFromModel(payload),
	})
}

func isClientError(err error) bool {
	for _, target := range []error{
		model.ErrWeakPassword, model.ErrInvalidEmail, model.ErrInvalidPayload,
		model.ErrMalformedToken, model.ErrNotFound, model.ErrAuthentication,
		model.ErrTooManyAttempts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
