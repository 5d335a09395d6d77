package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/skosovsky/promptfn"
)

// NewTestEngine returns an Engine on p with a quiet logger and retries that do not sleep.
func NewTestEngine(tb testing.TB, p promptfn.Provider, opts ...promptfn.Option) *promptfn.Engine {
	tb.Helper()
	cfg := promptfn.DefaultConfig()
	cfg.Retry.MinTimeout = time.Millisecond
	cfg.Retry.MaxTimeout = time.Millisecond
	opts = append([]promptfn.Option{
		promptfn.WithProvider(p),
		promptfn.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	e, err := promptfn.New(cfg, opts...)
	if err != nil {
		tb.Fatalf("testutil: new engine: %v", err)
	}
	return e
}

// NewTestRegistry returns a Registry on e with a long timeout and panic recovery enabled.
func NewTestRegistry(e *promptfn.Engine, contracts ...*promptfn.Contract) *promptfn.Registry {
	reg := promptfn.NewRegistry(e,
		promptfn.WithDefaultTimeout(30*time.Second),
		promptfn.WithRecoverPanics(true),
	)
	reg.Register(contracts...)
	return reg
}
