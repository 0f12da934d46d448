package uploads

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/kahuna/internal/gateway"
)

var (
	ErrNoFiles      = errors.New("no files in upload")
	ErrInvalidForm  = errors.New("invalid multipart upload")
	ErrFileTooLarge = errors.New("upload exceeds maximum size")
)

// MapHTTPStatus maps upload errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return gateway.MapHTTPStatus(err)
	}
}
