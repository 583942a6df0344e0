package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is a configuration failure: the provider credential is
// absent from the environment. Never retried.
var ErrMissingAPIKey = errors.New("missing provider API key in environment")

// ErrEmptyPayload marks a successful upstream call whose payload was unusable
// (no text, no audio). Treated as retryable within the same candidate.
var ErrEmptyPayload = errors.New("empty payload")

// CallError is a non-2xx upstream response classified by status code.
type CallError struct {
	Status int
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Detail
}

// Transient reports whether the candidate may be retried as-is.
func (e *CallError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Rejected reports whether the candidate should be skipped without retry.
func (e *CallError) Rejected() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusBadRequest
}

// ExhaustedError is returned when every (version, model) candidate failed.
type ExhaustedError struct {
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted fallback matrix: %v", e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
