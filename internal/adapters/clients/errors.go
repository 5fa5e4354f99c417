// Package clients provides the instrumented HTTP client used to fetch
// remote images.
package clients

import "errors"

// Client errors are infrastructure failures. Callers translate them into
// domain errors.
var (
	// ErrCircuitOpen is returned while the circuit breaker blocks requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once all attempts failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrInvalidURL is returned for targets that cannot be requested.
	ErrInvalidURL = errors.New("invalid url")
)
