package promptfn

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Invocation is one named call routed through a Registry.
type Invocation struct {
	ID       string         `json:"id,omitempty"`
	Function string         `json:"function"`
	Params   map[string]any `json:"params,omitempty"`
}

// InvocationResult is the outcome of an Invocation. Error is set for fatal failures only;
// an answer that did not validate shows up as Outcome.Valid == false.
type InvocationResult struct {
	ID       string
	Function string
	Outcome  *Outcome
	Error    error
}

// Registry holds contracts by name and runs them on an Engine with a per-call timeout,
// a concurrency semaphore and optional panic recovery.
type Registry struct {
	engine    *Engine
	contracts map[string]*Contract
	sem       chan struct{}
	opts      registryOptions
	done      chan struct{}
	running   sync.WaitGroup
	mu        sync.Mutex
}

// NewRegistry creates a Registry that executes on e.
func NewRegistry(e *Engine, opts ...RegistryOption) *Registry {
	o := registryOptions{
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Registry{
		engine:    e,
		contracts: make(map[string]*Contract),
		sem:       sem,
		opts:      o,
		done:      make(chan struct{}),
	}
}

// Register adds contracts, replacing any with the same name.
func (r *Registry) Register(cs ...*Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cs {
		r.contracts[c.name] = c
	}
}

// Contracts returns the registered contracts sorted by name.
func (r *Registry) Contracts() []*Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := slices.Sorted(maps.Keys(r.contracts))
	out := make([]*Contract, 0, len(names))
	for _, name := range names {
		out = append(out, r.contracts[name])
	}
	return out
}

// Contract returns the contract registered under name.
func (r *Registry) Contract(name string) (*Contract, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[name]
	return c, ok
}

// Execute runs one invocation. The after hook always sees the final result.
func (r *Registry) Execute(ctx context.Context, inv Invocation) (out *Outcome, err error) {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil, ErrShutdown
	default:
	}
	c, ok := r.contracts[inv.Function]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, inv.Function)
	}
	r.running.Add(1)
	r.mu.Unlock()
	defer r.running.Done()

	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}
	if err = r.acquire(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waiting for a slot", ErrProviderTimeout)
		}
		return nil, err
	}
	defer r.release()

	start := time.Now()
	// Registered before the recover defer so the hook runs last and sees the panic error.
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, InvocationResult{ID: inv.ID, Function: inv.Function, Outcome: out, Error: err}, time.Since(start))
		}
	}()
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				out, err = nil, &PanicError{Value: p}
			}
		}()
	}
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, inv)
	}
	return r.engine.Run(ctx, c, inv.Params)
}

func (r *Registry) acquire(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) release() {
	if r.sem != nil {
		<-r.sem
	}
}

// ExecuteBatch runs all invocations concurrently and returns their results in input order.
func (r *Registry) ExecuteBatch(ctx context.Context, invs []Invocation) []InvocationResult {
	results := make([]InvocationResult, len(invs))
	var wg sync.WaitGroup
	for i, inv := range invs {
		wg.Go(func() {
			out, err := r.Execute(ctx, inv)
			results[i] = InvocationResult{ID: inv.ID, Function: inv.Function, Outcome: out, Error: err}
		})
	}
	wg.Wait()
	return results
}

// Shutdown stops accepting invocations and waits for in-flight ones or ctx.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
