package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultAttempts bounds the retries spent on any single candidate.
	DefaultAttempts = 2

	transientBackoff = 600 * time.Millisecond
	emptyRetryDelay  = 300 * time.Millisecond
)

// CallFunc performs one attempt against a concrete (apiVersion, model)
// candidate. A nil error means a usable payload; ErrEmptyPayload means the
// call succeeded but returned nothing usable; a *CallError carries the
// upstream HTTP status for classification. Any other error is fatal.
type CallFunc[T any] func(ctx context.Context, apiVersion, model string) (T, error)

// Grid is the ordered candidate matrix the invoker walks: API versions outer,
// models inner, with a bounded number of attempts per candidate.
type Grid struct {
	APIVersions []string
	Models      []string
	Attempts    int

	// Sleep is injectable for tests; nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (g Grid) attempts() int {
	if g.Attempts > 0 {
		return g.Attempts
	}
	return DefaultAttempts
}

func (g Grid) sleep(ctx context.Context, d time.Duration) error {
	if g.Sleep != nil {
		return g.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryEmpty
	outcomeRetryTransient
	outcomeSkipCandidate
	outcomeFatal
)

func classify(err error) outcome {
	if err == nil {
		return outcomeSuccess
	}
	if errors.Is(err, ErrEmptyPayload) {
		return outcomeRetryEmpty
	}
	var callErr *CallError
	if errors.As(err, &callErr) {
		switch {
		case callErr.Transient():
			return outcomeRetryTransient
		case callErr.Rejected():
			return outcomeSkipCandidate
		}
	}
	return outcomeFatal
}

// Invoke walks the candidate grid until one call yields a usable payload.
// The first success wins; transient failures back off linearly with the
// attempt number before retrying the same candidate; rejected candidates are
// abandoned immediately; any unclassified failure aborts the whole
// invocation. When the grid is exhausted the last observed error is reported
// wrapped in an *ExhaustedError.
func Invoke[T any](ctx context.Context, grid Grid, call CallFunc[T]) (T, error) {
	var zero T
	lastErr := errors.New("no candidates configured")

	for _, version := range grid.APIVersions {
		for _, model := range grid.Models {
			payload, done, err := tryCandidate(ctx, grid, version, model, call)
			if done {
				return payload, err
			}
			if err != nil {
				lastErr = err
			}
		}
	}

	return zero, &ExhaustedError{Last: lastErr}
}

// tryCandidate exercises one (version, model) pair up to the attempt limit.
// done=true carries a terminal result: either a payload or a fatal error.
// done=false means the candidate is spent and the grid should advance.
func tryCandidate[T any](ctx context.Context, grid Grid, version, model string, call CallFunc[T]) (T, bool, error) {
	var zero T
	attempts := grid.attempts()
	var candidateErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		payload, err := call(ctx, version, model)

		switch classify(err) {
		case outcomeSuccess:
			return payload, true, nil

		case outcomeRetryEmpty:
			candidateErr = fmt.Errorf("%s/%s#%d: %w", version, model, attempt, err)
			if attempt < attempts {
				if sleepErr := grid.sleep(ctx, emptyRetryDelay); sleepErr != nil {
					return zero, true, sleepErr
				}
			}

		case outcomeRetryTransient:
			candidateErr = fmt.Errorf("%s/%s#%d: %w", version, model, attempt, err)
			if attempt < attempts {
				if sleepErr := grid.sleep(ctx, transientBackoff*time.Duration(attempt)); sleepErr != nil {
					return zero, true, sleepErr
				}
			}

		case outcomeSkipCandidate:
			return zero, false, fmt.Errorf("%s/%s#%d: %w", version, model, attempt, err)

		case outcomeFatal:
			return zero, true, fmt.Errorf("%s/%s#%d: %w", version, model, attempt, err)
		}
	}

	return zero, false, candidateErr
}
