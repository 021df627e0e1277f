// Package middleware holds HTTP middlewares for the recovery API.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/kapu-recovery/internal/model"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, reusing a valid client-supplied one.
type RequestID struct {
	contextManager model.ContextManager
}

// NewRequestID creates a new RequestID middleware.
func NewRequestID(contextManager model.ContextManager) *RequestID {
	return &RequestID{contextManager: contextManager}
}

func (m *RequestID) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(RequestIDHeader, id.String())
		ctx := m.contextManager.SetRequestIDToContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
