package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/kapu-recovery/internal/model"
)

func handleError(w http.ResponseWriter, err error) {
	var weak *model.WeakPasswordError
	switch {
	case errors.As(err, &weak):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Password does not meet requirements",
			Details: weak.Violations,
		})
	case errors.Is(err, model.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password does not meet requirements")
	case errors.Is(err, model.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "Invalid email format")
	case errors.Is(err, model.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "Invalid wallet data structure")
	case errors.Is(err, model.ErrMalformedToken):
		writeError(w, http.StatusBadRequest, "Invalid recovery token format")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "Invalid recovery link")
	case errors.Is(err, model.ErrAuthentication):
		writeError(w, http.StatusUnauthorized, "Invalid password. Please check your password and try again.")
	case errors.Is(err, model.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
	case errors.Is(err, model.ErrEmailDelivery):
		writeError(w, http.StatusInternalServerError, "Failed to send recovery email")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
