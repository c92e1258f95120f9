package llm

import (
	"errors"
	"fmt"
)

// Provider failures collapse onto a small taxonomy so callers can decide
// whether to resubmit without knowing which backend was configured.
var (
	// ErrUnavailable means the provider could not be reached at all.
	ErrUnavailable = errors.New("could not connect to AI service")

	// ErrOverloaded means the provider refused with a rate limit or
	// overload signal; retrying later may succeed.
	ErrOverloaded = errors.New("AI service is busy, please try again later")

	// ErrFault covers provider-side faults: server errors and responses
	// that cannot be parsed.
	ErrFault = errors.New("AI service fault")

	// ErrConfig marks failures the operator must fix (bad provider name,
	// missing or invalid API key, unknown model). Never retryable.
	ErrConfig = errors.New("AI provider misconfigured")
)

// Parse failures are distinct kinds of ErrFault: a missing opening brace
// points at a malformed prompt or response, while a missing closing brace
// points at a token-limit cutoff the caller can remediate with a shorter
// job description.
var (
	ErrNoJSON    = fmt.Errorf("%w: no JSON found in response", ErrFault)
	ErrTruncated = fmt.Errorf("%w: response was truncated, try a shorter job description", ErrFault)
)

// ProviderError carries the provider's own status and message for
// server-side faults.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI service error: %d - %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrFault }
