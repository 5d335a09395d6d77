// Package testutil provides test helpers for promptfn (MockProvider, RecordingReporter).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/promptfn"
)

// Reply is one scripted provider answer. When Err is set Text is ignored.
type Reply struct {
	Text string
	Err  error
}

// MockProvider is a Provider that answers from a script and records every request.
// Once the script runs out the last reply is repeated; an empty script answers "".
type MockProvider struct {
	NameVal    string
	Replies    []Reply
	CompleteFn func(ctx context.Context, req promptfn.Request) (*promptfn.Completion, error)

	mu       sync.Mutex
	requests []promptfn.Request
}

// NewMockProvider returns a MockProvider that answers texts in order.
func NewMockProvider(texts ...string) *MockProvider {
	m := &MockProvider{}
	for _, t := range texts {
		m.Replies = append(m.Replies, Reply{Text: t})
	}
	return m
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Complete records req and returns the next scripted reply, or calls CompleteFn if set.
func (m *MockProvider) Complete(ctx context.Context, req promptfn.Request) (*promptfn.Completion, error) {
	m.mu.Lock()
	n := len(m.requests)
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.Replies) == 0 {
		return &promptfn.Completion{FinishReason: "stop"}, nil
	}
	r := m.Replies[min(n, len(m.Replies)-1)]
	if r.Err != nil {
		return nil, r.Err
	}
	return &promptfn.Completion{Text: r.Text, FinishReason: "stop"}, nil
}

// Requests returns a copy of the requests seen so far.
func (m *MockProvider) Requests() []promptfn.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]promptfn.Request(nil), m.requests...)
}

// Calls returns how many times Complete was called.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

var _ promptfn.Provider = (*MockProvider)(nil)
