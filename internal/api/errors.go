package api

import (
	"errors"
	"net/http" // HTTP status codes

	"topup_relay/internal/domain"
	"topup_relay/internal/gateway"
)

// statusFor maps core errors to HTTP statuses. Gateway failures are a
// "try again" condition for the caller, not a server crash.
func statusFor(err error) int {
	var validationErr *domain.ValidationError
	var gatewayErr *gateway.Error
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
