package crops

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSubmitting       = errors.New("crop submission already in progress")
	ErrInvalidSelection = errors.New("invalid crop selection")
	ErrInvalidKey       = errors.New("invalid crop key")
	ErrNotFound         = errors.New("crop not found")
	ErrNoWorkflow       = errors.New("no crop workflow for image")
)

// SubmissionError reports a failed crop request together with the rect that was sent.
type SubmissionError struct {
	Rect Rect
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("create crop %s: %v", KeyOf(e.Rect), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// httpStatuser is implemented by upstream errors that know their BFF status.
type httpStatuser interface {
	HTTPStatus() int
}

// MapHTTPStatus maps crop errors to HTTP status codes. An upstream status
// wrapped in a SubmissionError wins over the generic bad gateway.
func MapHTTPStatus(err error) int {
	var subErr *SubmissionError
	var upstream httpStatuser
	switch {
	case errors.Is(err, ErrSubmitting):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoWorkflow):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		return upstream.HTTPStatus()
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
