// Package retry runs fallible operations with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxJitter   = 150 * time.Millisecond
)

// Policy configures Do. A zero MaxAttempts or BaseDelay falls back to the
// defaults above; a zero MaxJitter disables jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration

	// Transient decides whether an error is worth retrying (default IsRateLimited)
	Transient func(error) bool

	// Sleep suspends the caller; injectable for tests
	Sleep func(ctx context.Context, d time.Duration) error

	// Jitter returns a duration in [0, max); injectable for tests
	Jitter func(max time.Duration) time.Duration

	// OnRetry is called before each backoff sleep
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the standard rate-limit retry policy
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxJitter:   DefaultMaxJitter,
		Transient:   IsRateLimited,
	}
}

// Do executes op until it succeeds, fails with a non-transient error, or
// MaxAttempts is exhausted. Between attempt i and i+1 (0-indexed) it waits
// BaseDelay*2^i plus jitter in [0, MaxJitter). The last error is returned
// unchanged.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var (
		zero T
		last error
	)
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		last = err
		if !p.Transient(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := p.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, last
}

// Backoff returns the wait after the given 0-indexed attempt
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	return p.BaseDelay*time.Duration(1<<uint(attempt)) + p.Jitter(p.MaxJitter)
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxJitter < 0 {
		p.MaxJitter = 0
	}
	if p.Transient == nil {
		p.Transient = IsRateLimited
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	if p.Jitter == nil {
		p.Jitter = UniformJitter
	}
	return p
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UniformJitter returns a uniformly random duration in [0, max)
func UniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}

// HTTPStatuser is implemented by errors that carry an HTTP status code
type HTTPStatuser interface {
	HTTPStatus() int
}

// IsRateLimited reports whether err looks like rate or quota limiting: a
// status of 429 anywhere in the chain, "429" in the message, or "rate" in
// the lower-cased message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var hs HTTPStatuser
	if errors.As(err, &hs) && hs.HTTPStatus() == 429 {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "rate")
}
