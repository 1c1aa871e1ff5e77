package spotify

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrNotAuthenticated is returned when a request is attempted before
	// Authenticate has completed successfully. This indicates a caller
	// ordering bug, not an upstream failure.
	ErrNotAuthenticated = errors.New("spotify: client not authenticated")

	// ErrContextCancelled is returned when the context is cancelled while
	// waiting out a rate limit delay.
	ErrContextCancelled = errors.New("spotify: context cancelled")
)

// AuthError is returned when the client-credentials exchange is rejected
// by the accounts service. It carries the upstream status and body.
type AuthError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify: token exchange failed (status %d): %s", e.StatusCode, e.Body)
}

// APIError represents a non-2xx response from the Web API. The retry
// wrapper inspects StatusCode and Header to handle rate limiting; every
// other status propagates to the caller unchanged.
type APIError struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("spotify: API error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("spotify: API error (status %d)", e.StatusCode)
}

// IsRateLimited reports whether err is a 429 Too Many Requests response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
