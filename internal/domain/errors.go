package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPersonaNotFound signals that none of the requested personas exist.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrTasteProfileNotFound signals a missing taste profile.
	ErrTasteProfileNotFound = errors.New("taste profile not found")
	// ErrListNotFound signals a missing or empty parsed wine list.
	ErrListNotFound = errors.New("parsed list not found")
	// ErrInvalidInput signals a client payload that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated signals a request without a user identity.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMQuotaExceeded signals an exhausted token budget.
	ErrLLMQuotaExceeded = errors.New("llm quota exceeded")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrLLMUnavailable signals that no language model is configured or the breaker is open.
	ErrLLMUnavailable = errors.New("llm unavailable")
)

// InvalidInputError wraps ErrInvalidInput with a message safe to show to clients.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Message)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NewInvalidInput creates an invalid input error with a client-facing message.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
