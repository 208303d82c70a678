package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the provider answered 503; the fetch is not retried.
	ErrUnavailable = errors.New("provider temporarily unavailable")
	// ErrQuotaExceeded means the provider still reported quota exhaustion after the retry.
	ErrQuotaExceeded = errors.New("provider quota exceeded")
	// ErrMalformed means the response was missing expected fields.
	ErrMalformed = errors.New("malformed provider response")
)

// APIError is a non-2xx answer from a provider.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d, body: %s", e.Endpoint, e.StatusCode, e.Message)
}
