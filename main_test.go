package promptfn

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubProvider answers with fn and counts calls. testutil.MockProvider cannot be used
// from package-internal tests.
type stubProvider struct {
	calls int
	fn    func(ctx context.Context, req Request) (*Completion, error)
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	s.calls++
	return s.fn(ctx, req)
}

func fastRetry(n int) RetryOptions {
	o := DefaultRetryOptions()
	o.Retries = n
	o.MinTimeout = time.Millisecond
	o.MaxTimeout = time.Millisecond
	return o
}
