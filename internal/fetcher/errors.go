package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidJSON is returned when response body can't be decoded as JSON.
var ErrInvalidJSON = errors.New("response body is not valid json")

// StatusError is returned when response status is not 2xx.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d for %s", e.StatusCode, e.URL)
}

// Retryable reports whether request may succeed when repeated later.
func (e *StatusError) Retryable() bool {
	return isRetryableStatus(e.StatusCode)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
