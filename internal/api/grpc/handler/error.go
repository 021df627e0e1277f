package handler

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/kapu-recovery/internal/model"
)

func handleError(err error) error {
	var weak *model.WeakPasswordError
	switch {
	case errors.As(err, &weak):
		return status.Error(codes.InvalidArgument,
			"password does not meet requirements: "+strings.Join(weak.Violations, "; "))
	case errors.Is(err, model.ErrWeakPassword):
		return status.Error(codes.InvalidArgument, "password does not meet requirements")
	case errors.Is(err, model.ErrInvalidEmail):
		return status.Error(codes.InvalidArgument, "invalid email format")
	case errors.Is(err, model.ErrInvalidPayload):
		return status.Error(codes.InvalidArgument, "invalid wallet data structure")
	case errors.Is(err, model.ErrMalformedToken):
		return status.Error(codes.InvalidArgument, "malformed recovery token")
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "invalid recovery link")
	case errors.Is(err, model.ErrAuthentication):
		return status.Error(codes.Unauthenticated, "invalid password")
	case errors.Is(err, model.ErrTooManyAttempts):
		return status.Error(codes.ResourceExhausted, "too many attempts")
	case errors.Is(err, model.ErrEmailDelivery):
		return status.Error(codes.Internal, "failed to send recovery email")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func isClientError(err error) bool {
	if st, ok := status.FromError(handleError(err)); ok {
		return st.Code() != codes.Internal
	}
	return false
}
