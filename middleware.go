package promptfn

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Middleware wraps a Provider with cross-cutting behavior (logging, recovery, timeout, retry).
type Middleware func(Provider) Provider

// Chain applies middlewares to p in onion order: the first middleware is outermost.
func Chain(p Provider, middlewares ...Middleware) Provider {
	for i := len(middlewares) - 1; i >= 0; i-- {
		p = middlewares[i](p)
	}
	return p
}

// providerBase delegates Name to the wrapped Provider; used by middleware wrappers.
type providerBase struct{ next Provider }

func (b *providerBase) Name() string { return b.next.Name() }

// WithLogging returns a middleware that logs start, end, duration and errors of every completion.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Provider) Provider {
		return &loggingProvider{providerBase: providerBase{next: next}, logger: logger}
	}
}

type loggingProvider struct {
	providerBase
	logger *slog.Logger
}

func (m *loggingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	m.logger.InfoContext(ctx, "completion start", "provider", m.next.Name(), "model", req.Model, "family", req.Family)
	start := time.Now()
	res, err := m.next.Complete(ctx, req)
	dur := time.Since(start)
	if err != nil {
		m.logger.ErrorContext(ctx, "completion error", "provider", m.next.Name(), "model", req.Model, "duration", dur, "error", err)
		return nil, err
	}
	m.logger.InfoContext(ctx, "completion end", "provider", m.next.Name(), "model", req.Model, "duration", dur, "finish_reason", res.FinishReason)
	return res, nil
}

// WithRecovery returns a middleware that turns a panicking provider into a *PanicError.
func WithRecovery() Middleware {
	return func(next Provider) Provider {
		return &recoveryProvider{providerBase{next: next}}
	}
}

type recoveryProvider struct{ providerBase }

func (r *recoveryProvider) Complete(ctx context.Context, req Request) (res *Completion, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &PanicError{Value: p}
		}
	}()
	return r.next.Complete(ctx, req)
}

// WithTimeout returns a middleware that bounds each attempt. An attempt that runs out of
// time fails with ErrProviderTimeout, which the retry policy treats like a 5xx.
// A non-positive d disables the bound.
func WithTimeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		return &timeoutProvider{providerBase: providerBase{next: next}, timeout: d}
	}
}

type timeoutProvider struct {
	providerBase
	timeout time.Duration
}

func (t *timeoutProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	if t.timeout <= 0 {
		return t.next.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	res, err := t.next.Complete(attemptCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProviderError{Provider: t.next.Name(), Message: "attempt exceeded " + t.timeout.String(), Err: ErrProviderTimeout}
	}
	return res, err
}

// Retrying returns a middleware that retries failed attempts per opts.
// A nil ShouldRetry uses RetryProviderErrors.
func Retrying(opts RetryOptions) Middleware {
	if opts.ShouldRetry == nil {
		opts.ShouldRetry = RetryProviderErrors
	}
	return func(next Provider) Provider {
		return &retryingProvider{providerBase: providerBase{next: next}, opts: opts}
	}
}

type retryingProvider struct {
	providerBase
	opts RetryOptions
}

func (r *retryingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	return WithRetry(func(ctx context.Context) (*Completion, error) {
		return r.next.Complete(ctx, req)
	}, r.opts)(ctx)
}
