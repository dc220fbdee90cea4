// Package clients provides the instrumented HTTP client used to reach the
// remote quote source.
package clients

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Client errors are infrastructure failures. The acl package translates them
// into domain errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker blocks a request.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is used.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a retryable status (5xx or 429) that survived all retries.
type StatusError struct {
	StatusCode int

	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return "rate limited: 429"
	}

	return fmt.Sprintf("server error: %d", e.StatusCode)
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}

		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}

// StatusCode extracts the HTTP status from err, or 0 when it carries none.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	return 0
}
