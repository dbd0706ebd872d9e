package wanikani

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the provided API token is invalid
var ErrInvalidToken = errors.New("invalid or expired WaniKani token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("wanikani API rate limit exceeded")

// ErrNoToken is returned by Source when no API token is configured.
var ErrNoToken = errors.New("no WaniKani API token configured")

// ServerError represents a 5xx error from the WaniKani API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("WaniKani server error: HTTP %d", e.StatusCode)
}

// IsRetryable reports whether err is worth retrying later: rate limits,
// server errors and transport failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
