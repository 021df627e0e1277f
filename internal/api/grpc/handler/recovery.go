package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/kapu-recovery/internal/api/grpc/recoveryrpc"
	"github.com/dtroode/kapu-recovery/internal/logger"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// RecoveryService defines the recovery operations exposed over gRPC.
type RecoveryService interface {
	IssueBackup(ctx context.Context, req model.IssueRequest) (model.IssueResult, error)
	ValidateToken(ctx context.Context, token string) error
	RedeemBackup(ctx context.Context, token, password string) (model.SecretPayload, error)
}

var _ recoveryrpc.RecoveryServer = (*Recovery)(nil)

// Recovery handles gRPC endpoints for wallet recovery.
type Recovery struct {
	recoveryrpc.UnimplementedRecoveryServer
	service RecoveryService
	logger  *logger.Logger
}

// NewRecovery creates a new Recovery handler.
func NewRecovery(service RecoveryService, logger *logger.Logger) *Recovery {
	return &Recovery{
		service: service,
		logger:  logger,
	}
}

// IssueBackup encrypts and stores a wallet, then emails the recovery link.
func (h *Recovery) IssueBackup(ctx context.Context, req *recoveryrpc.IssueBackupRequest) (*recoveryrpc.IssueBackupResponse, error) {
	if req.Email == "" || req.Password == "" || req.Wallet == nil {
		return nil, status.Error(codes.InvalidArgument, "email, password, and wallet are required")
	}

	h.logger.Debug("Recovery handler: processing issue backup request",
		"address", req.Wallet.Address)

	res, err := h.service.IssueBackup(ctx, model.IssueRequest{
		Email:    req.Email,
		Password: req.Password,
		Payload: model.SecretPayload{
			PrivateKey: req.Wallet.PrivateKey,
			Address:    req.Wallet.Address,
			Mnemonic:   req.Wallet.Mnemonic,
		},
	})
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: issue backup failed",
				"address", req.Wallet.Address,
				"error", err.Error())
		}
		return nil, handleError(err)
	}

	return &recoveryrpc.IssueBackupResponse{
		Success: true,
		Message: "Recovery email sent successfully",
		EmailID: res.EmailID,
	}, nil
}

// ValidateToken reports whether a live backup exists for the token.
func (h *Recovery) ValidateToken(ctx context.Context, req *recoveryrpc.ValidateTokenRequest) (*recoveryrpc.ValidateTokenResponse, error) {
	if req.Token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	if err := h.service.ValidateToken(ctx, req.Token); err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: validate token failed",
				"error", err.Error())
		}
		return nil, handleError(err)
	}

	return &recoveryrpc.ValidateTokenResponse{Valid: true}, nil
}

// RedeemBackup decrypts and erases the backup.
func (h *Recovery) RedeemBackup(ctx context.Context, req *recoveryrpc.RedeemBackupRequest) (*recoveryrpc.RedeemBackupResponse, error) {
	if req.Token == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "token and password are required")
	}

	payload, err := h.service.RedeemBackup(ctx, req.Token, req.Password)
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("Recovery handler: redeem backup failed",
				"error", err.Error())
		}
		return nil, handleError(err)
	}

	h.logger.Info("Recovery handler: backup redeemed",
		"address", payload.Address)

	return &recoveryrpc.RedeemBackupResponse{
		Wallet: &recoveryrpc.Wallet{
			PrivateKey: payload.PrivateKey,
			Address:    payload.Address,
			Mnemonic:   payload.Mnemonic,
		},
	}, nil
}
