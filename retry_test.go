package promptfn

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "first attempt succeeds", errs: nil, wantCalls: 1},
		{name: "server error retried", errs: []error{&ProviderError{Status: 500}, &ProviderError{Status: 503}}, wantCalls: 3},
		{name: "rate limit retried", errs: []error{&ProviderError{Status: http.StatusTooManyRequests}}, wantCalls: 2},
		{name: "timeout retried", errs: []error{&ProviderError{Err: ErrProviderTimeout}}, wantCalls: 2},
		{name: "unauthorized not retried", errs: []error{&ProviderError{Status: 401}}, wantCalls: 1, wantErr: true},
		{name: "attempts exhausted", errs: []error{&ProviderError{Status: 500}, &ProviderError{Status: 500}, &ProviderError{Status: 502}}, wantCalls: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := WithRetry(func(context.Context) (string, error) {
				calls++
				if calls <= len(tt.errs) {
					return "", tt.errs[calls-1]
				}
				return "ok", nil
			}, fastRetry(3))
			v, err := op(context.Background())
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", v)
		})
	}
}

func TestWithRetry_NilShouldRetryRetriesEverything(t *testing.T) {
	calls := 0
	op := WithRetry(func(context.Context) (int, error) {
		calls++
		return 0, errors.New("plain")
	}, RetryOptions{Retries: 4, MinTimeout: time.Millisecond})
	_, err := op(context.Background())
	require.EqualError(t, err, "plain")
	assert.Equal(t, 4, calls)
}

func TestWithRetry_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := WithRetry(func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &ProviderError{Status: 500}
	}, RetryOptions{Retries: 5, MinTimeout: time.Hour, ShouldRetry: RetryProviderErrors})
	_, err := op(ctx)
	require.ErrorIs(t, err, context.Canceled)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 500, pe.Status)
	assert.Equal(t, 1, calls)
}

func TestRetryOptions_Delay(t *testing.T) {
	o := RetryOptions{MinTimeout: 100 * time.Millisecond, MaxTimeout: time.Second, Factor: 2}.withDefaults()
	assert.Equal(t, 100*time.Millisecond, o.delay(1))
	assert.Equal(t, 200*time.Millisecond, o.delay(2))
	assert.Equal(t, 800*time.Millisecond, o.delay(4))
	assert.Equal(t, time.Second, o.delay(5))

	d := RetryOptions{}.withDefaults()
	assert.Equal(t, 3, d.Retries)
	assert.Equal(t, time.Second, d.MinTimeout)
	assert.Equal(t, 30*time.Second, d.MaxTimeout)
	assert.InDelta(t, 2.0, d.Factor, 0)
}
