package search

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/kahuna/internal/gateway"
)

var (
	ErrSessionNotFound = errors.New("search session not found")
	ErrInvalidSession  = errors.New("invalid search session id")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrGateway):
		return gateway.MapHTTPStatus(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
