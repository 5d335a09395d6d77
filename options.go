package promptfn

import (
	"context"
	"log/slog"
	"time"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/report"
)

type engineOptions struct {
	provider    Provider
	logger      *slog.Logger
	middlewares []Middleware
	reporter    report.Reporter
	decoder     heal.Decoder
	cacheSize   int
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithProvider sets the completion provider. Required.
func WithProvider(p Provider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithLogger sets the engine logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware adds provider middlewares outside the engine's retry and timeout
// layers (first is outermost).
func WithMiddleware(mw ...Middleware) Option {
	return func(o *engineOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithReporter replaces the HTTP reporter built from Config.ProjectKey and Config.ReportURL.
func WithReporter(r report.Reporter) Option {
	return func(o *engineOptions) {
		o.reporter = r
	}
}

// WithDecoderLimits sets the healing decoder's nesting and size limits.
func WithDecoderLimits(maxDepth, maxBytes int) Option {
	return func(o *engineOptions) {
		o.decoder = heal.Decoder{MaxDepth: maxDepth, MaxBytes: maxBytes}
	}
}

// WithSchemaCacheSize sets how many compiled return schemas are kept.
func WithSchemaCacheSize(n int) Option {
	return func(o *engineOptions) {
		o.cacheSize = n
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	onBefore       func(context.Context, Invocation)
	onAfter        func(context.Context, InvocationResult, time.Duration)
}

// WithDefaultTimeout bounds every invocation, retries included. Zero disables it.
func WithDefaultTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent invocations (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics turns a panic during an invocation into a *PanicError.
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnBeforeCall sets a hook called before each invocation.
func WithOnBeforeCall(fn func(context.Context, Invocation)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterCall sets a hook called after each invocation, successful or not.
func WithOnAfterCall(fn func(context.Context, InvocationResult, time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
