package seen

import (
	"errors"
	"net/http"
)

var ErrInvalidMark = errors.New("mark requires an uploadTime")

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidMark) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
