package providers

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates the provider's API key is not configured.
// It is terminal: a client cannot be constructed without credentials.
var ErrMissingCredentials = errors.New("provider credentials missing")

// Kind classifies a provider failure so callers can decide retry policy.
type Kind string

// Failure classifications. Only invalid_prompt suppresses retries.
const (
	KindRateLimit     Kind = "rate_limit"
	KindInvalidPrompt Kind = "invalid_prompt"
	KindServerError   Kind = "server_error"
	KindTimeout       Kind = "timeout"
	KindNetworkError  Kind = "network_error"
)

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed. Rate limits, server
// errors, timeouts, and network failures are transient; a rejected prompt
// will be rejected again.
func (e *Error) Retryable() bool {
	return e.Kind != KindInvalidPrompt
}
