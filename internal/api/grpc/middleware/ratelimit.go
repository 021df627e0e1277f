package middleware

import (
	"context"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimiter adapts a token bucket to the ratelimit interceptor.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter. A nil limiter never rejects.
func NewRateLimiter(limiter *rate.Limiter) *RateLimiter {
	return &RateLimiter{limiter: limiter}
}

// Limit returns ResourceExhausted once the bucket is empty.
func (l *RateLimiter) Limit(_ context.Context) error {
	if l.limiter != nil && !l.limiter.Allow() {
		return status.Error(codes.ResourceExhausted, "too many requests")
	}
	return nil
}
