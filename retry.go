package promptfn

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryOptions bounds WithRetry. Zero fields take the defaults.
type RetryOptions struct {
	// Retries is the total number of attempts, the first one included. Default 3.
	Retries int `yaml:"retries"`
	// MinTimeout is the wait before the second attempt. Default 1s.
	MinTimeout time.Duration `yaml:"min_timeout"`
	// MaxTimeout caps the wait between attempts. Default 30s.
	MaxTimeout time.Duration `yaml:"max_timeout"`
	// Factor multiplies the wait after every attempt. Default 2.
	Factor float64 `yaml:"factor"`
	// ShouldRetry decides whether the failure of the given attempt (1-based) is retried.
	// Nil retries every error.
	ShouldRetry func(err error, attempt int) bool `yaml:"-"`
}

// DefaultRetryOptions retries provider errors that IsRetryable accepts.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Retries:     3,
		MinTimeout:  time.Second,
		MaxTimeout:  30 * time.Second,
		Factor:      2,
		ShouldRetry: RetryProviderErrors,
	}
}

// RetryProviderErrors is the engine's retry policy: 429, 5xx and timeouts are retried,
// everything else fails at once.
func RetryProviderErrors(err error, _ int) bool { return IsRetryable(err) }

func (o RetryOptions) withDefaults() RetryOptions {
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.MinTimeout <= 0 {
		o.MinTimeout = time.Second
	}
	if o.MaxTimeout <= 0 {
		o.MaxTimeout = 30 * time.Second
	}
	if o.MaxTimeout < o.MinTimeout {
		o.MaxTimeout = o.MinTimeout
	}
	if o.Factor < 1 {
		o.Factor = 2
	}
	return o
}

// delay returns the wait after the given failed attempt.
func (o RetryOptions) delay(attempt int) time.Duration {
	d := float64(o.MinTimeout) * math.Pow(o.Factor, float64(attempt-1))
	if d > float64(o.MaxTimeout) {
		return o.MaxTimeout
	}
	return time.Duration(d)
}

// WithRetry wraps op so failures are retried with exponential backoff.
// The wrapped function returns the last error once attempts run out, ShouldRetry
// declines, or ctx is done while waiting.
func WithRetry[T any](op func(ctx context.Context) (T, error), opts RetryOptions) func(ctx context.Context) (T, error) {
	o := opts.withDefaults()
	return func(ctx context.Context) (T, error) {
		var zero T
		for attempt := 1; ; attempt++ {
			v, err := op(ctx)
			if err == nil {
				return v, nil
			}
			if attempt >= o.Retries || (o.ShouldRetry != nil && !o.ShouldRetry(err, attempt)) {
				return zero, err
			}
			timer := time.NewTimer(o.delay(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("%w (after attempt %d: %w)", ctx.Err(), attempt, err)
			case <-timer.C:
			}
		}
	}
}
