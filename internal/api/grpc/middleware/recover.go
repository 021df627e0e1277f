package middleware

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/kapu-recovery/internal/logger"
)

// Recover converts handler panics into Internal errors.
type Recover struct {
	logger *logger.Logger
}

// NewRecover creates a new Recover middleware.
func NewRecover(logger *logger.Logger) *Recover {
	return &Recover{logger: logger}
}

// HandlePanic is a recovery.RecoveryHandlerFuncContext.
func (m *Recover) HandlePanic(ctx context.Context, p any) error {
	m.logger.Error("gRPC handler panicked",
		"panic", fmt.Sprint(p))
	return status.Error(codes.Internal, "internal server error")
}
