package authapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers 400/401 responses from the auth endpoints.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNetwork covers transport-level failures before a response arrives.
	ErrNetwork = errors.New("network error")
)

// APIError is any other non-2xx response, carrying the server message when
// one was provided, and malformed response bodies.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api error: %s", e.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}
