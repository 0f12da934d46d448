package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrGateway        = errors.New("gateway request failed")
	ErrUploadTooLarge = errors.New("upload exceeds maximum size")
	ErrEmptyUpload    = errors.New("upload is empty")
)

// Error describes a failed call to one of the media services.
// Status is zero when no response was received.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrGateway so callers can test for any gateway failure.
func (e *Error) Is(target error) bool {
	return target == ErrGateway
}

// HTTPStatus is the status the BFF reports for this failure.
func (e *Error) HTTPStatus() int {
	if e.Status == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// MapHTTPStatus maps gateway errors to HTTP status codes for the BFF.
// Upstream 404s pass through; other upstream failures are bad gateway.
func MapHTTPStatus(err error) int {
	var gwErr *Error
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyUpload):
		return http.StatusBadRequest
	case errors.As(err, &gwErr):
		return gwErr.HTTPStatus()
	default:
		return http.StatusInternalServerError
	}
}
