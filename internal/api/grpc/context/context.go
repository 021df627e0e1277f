package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// RequestIDKey is the metadata key carrying the request ID.
const RequestIDKey string = "x-request-id"

// Manager stores request IDs in incoming gRPC metadata.
// HTTP middleware uses the same storage so handlers see one shape of context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetRequestIDToContext returns ctx with requestID in its incoming metadata.
// Existing metadata keys are preserved.
func (m *Manager) SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{RequestIDKey: requestID.String()})
	} else {
		md = md.Copy()
		md.Set(RequestIDKey, requestID.String())
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetRequestIDFromContext reads the request ID from incoming metadata.
func (m *Manager) GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, false
	}

	return parseFirst(md.Get(RequestIDKey))
}

// AppendRequestIDToOutgoing attaches requestID to outgoing client metadata.
func (m *Manager) AppendRequestIDToOutgoing(ctx context.Context, requestID uuid.UUID) context.Context {
	return metadata.AppendToOutgoingContext(ctx, RequestIDKey, requestID.String())
}

// GetRequestIDFromResponseMetadata reads the request ID a server echoed in headers.
func (m *Manager) GetRequestIDFromResponseMetadata(md metadata.MD) (uuid.UUID, bool) {
	return parseFirst(md.Get(RequestIDKey))
}

func parseFirst(values []string) (uuid.UUID, bool) {
	if len(values) == 0 {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
