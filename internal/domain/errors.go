package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested movie does not exist (locally or remotely)
	ErrNotFound = errors.New("movie not found")

	// ErrDuplicateID indicates an insert collided with an existing identifier
	ErrDuplicateID = errors.New("movie identifier already exists")

	// ErrOffline indicates the catalog API is unreachable
	ErrOffline = errors.New("movie catalog is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("API key is invalid")

	// ErrMalformedResponse indicates the catalog returned a payload that could not be decoded
	ErrMalformedResponse = errors.New("malformed catalog response")
)

// HTTPError reports a non-2xx response from the catalog API.
type HTTPError struct {
	StatusCode int
	Message    string // status_message from the error envelope, if any
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// Unwrap maps well-known statuses onto the sentinel errors
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrAuthFailed
	default:
		return nil
	}
}
