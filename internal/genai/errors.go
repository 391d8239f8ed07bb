package genai

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to the request boundary. Handlers convert every one
// of these into a well-formed JSON envelope; nothing below the boundary
// writes HTTP responses.
var (
	// ErrMissingCredential is returned before any outbound call when the
	// provider credential required for the operation is not configured.
	ErrMissingCredential = errors.New("provider credential not configured")

	// ErrInvalidInput is returned when the inbound body is missing required
	// user input or fails schema validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMediaReturned is returned when a media response contains no
	// decodable payload. This is a normal terminal outcome, not a crash.
	ErrNoMediaReturned = errors.New("the provider returned no media")

	// ErrRateLimited is returned when the per-client sliding window is full.
	ErrRateLimited = errors.New("rate limit exceeded, try again shortly")

	// ErrTimeout is returned when the per-request deadline elapses while an
	// outbound call is in flight.
	ErrTimeout = errors.New("the provider took too long to respond")
)

// rawPrefixLimit bounds how much of a non-JSON provider body is carried in a
// MalformedResponseError for diagnostics. Never the full body.
const rawPrefixLimit = 260

// MalformedResponseError reports a provider body that could not be parsed as
// JSON. Prefix holds at most rawPrefixLimit characters of the raw text.
type MalformedResponseError struct {
	StatusCode int
	Prefix     string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("provider returned a non-JSON response (status %d): %s", e.StatusCode, e.Prefix)
}

// ProviderError reports a structured failure from the provider: a non-2xx
// status, or an explicit error field inside a parsed body.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// truncateRaw bounds raw provider text for diagnostics. Truncation happens on
// a rune boundary so a multi-byte character is never split.
func truncateRaw(s string) string {
	runes := []rune(s)
	if len(runes) > rawPrefixLimit {
		return string(runes[:rawPrefixLimit])
	}
	return s
}
