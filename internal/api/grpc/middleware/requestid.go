package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	grpcctx "github.com/dtroode/kapu-recovery/internal/api/grpc/context"
	"github.com/dtroode/kapu-recovery/internal/model"
)

// RequestID ensures every call carries a request ID and echoes it in headers.
type RequestID struct {
	contextManager model.ContextManager
}

// NewRequestID creates a new RequestID middleware.
func NewRequestID(contextManager model.ContextManager) *RequestID {
	return &RequestID{contextManager: contextManager}
}

// HandleGRPC reuses a valid client-supplied ID or assigns a new one.
func (m *RequestID) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id, ok := m.contextManager.GetRequestIDFromContext(ctx)
	if !ok {
		id = uuid.New()
		ctx = m.contextManager.SetRequestIDToContext(ctx, id)
	}

	// Fails only outside a real server transport, e.g. in unit tests.
	_ = grpc.SetHeader(ctx, metadata.Pairs(grpcctx.RequestIDKey, id.String()))

	return handler(ctx, req)
}
