package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by catalog clients.
var (
	// ErrRateLimited indicates the catalog's rate limit has been exceeded.
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with catalog")

	// ErrInvalidResponse indicates an unexpected catalog response.
	ErrInvalidResponse = errors.New("invalid response from catalog")
)

// APIError represents an error response from a catalog API.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
