package promptfn

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okProvider(text string) *stubProvider {
	return &stubProvider{fn: func(context.Context, Request) (*Completion, error) {
		return &Completion{Text: text, FinishReason: "stop"}, nil
	}}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Provider) Provider {
			return ProviderFunc{ProviderName: next.Name(), Fn: func(ctx context.Context, req Request) (*Completion, error) {
				order = append(order, name)
				return next.Complete(ctx, req)
			}}
		}
	}
	p := Chain(okProvider("x"), mw("outer"), mw("inner"))
	_, err := p.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, "stub", p.Name())
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := WithLogging(logger)(okProvider("x"))
	_, err := p.Complete(context.Background(), Request{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "completion start")
	assert.Contains(t, buf.String(), "completion end")
	assert.Contains(t, buf.String(), "gpt-4o")

	buf.Reset()
	failing := &stubProvider{fn: func(context.Context, Request) (*Completion, error) {
		return nil, errors.New("denied")
	}}
	_, err = WithLogging(logger)(failing).Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "completion error")
	assert.Contains(t, buf.String(), "denied")
}

func TestWithRecovery(t *testing.T) {
	p := WithRecovery()(&stubProvider{fn: func(context.Context, Request) (*Completion, error) {
		panic("kaboom")
	}})
	res, err := p.Complete(context.Background(), Request{})
	assert.Nil(t, res)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestWithTimeout(t *testing.T) {
	slow := &stubProvider{fn: func(ctx context.Context, _ Request) (*Completion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	_, err := WithTimeout(10*time.Millisecond)(slow).Complete(context.Background(), Request{})
	require.ErrorIs(t, err, ErrProviderTimeout)
	assert.True(t, IsRetryable(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithTimeout(time.Hour)(slow).Complete(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrProviderTimeout)

	res, err := WithTimeout(0)(okProvider("fine")).Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Text)
}

func TestRetrying(t *testing.T) {
	attempts := 0
	flaky := &stubProvider{fn: func(context.Context, Request) (*Completion, error) {
		attempts++
		if attempts < 3 {
			return nil, &ProviderError{Provider: "stub", Status: 502}
		}
		return &Completion{Text: "done"}, nil
	}}
	opts := fastRetry(3)
	opts.ShouldRetry = nil
	res, err := Retrying(opts)(flaky).Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "done", res.Text)
	assert.Equal(t, 3, flaky.calls)

	denied := &stubProvider{fn: func(context.Context, Request) (*Completion, error) {
		return nil, &ProviderError{Provider: "stub", Status: 401}
	}}
	_, err = Retrying(opts)(denied).Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, denied.calls, "nil ShouldRetry falls back to the provider policy")
}
