package promptfn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/skosovsky/promptfn/typeexpr"
)

// Func is a contract whose return type is the Go type R.
type Func[R any] struct {
	engine   *Engine
	contract *Contract
}

// NewFunc declares a function returning R. The return type is reflected from R
// (struct fields follow their json tags).
func NewFunc[R any](e *Engine, name, doc string, params []Param, service ServiceParameters) (*Func[R], error) {
	rt, err := typeexpr.Reflect[R]()
	if err != nil {
		return nil, fmt.Errorf("%s: return type: %w", name, err)
	}
	c, err := NewContract(name, doc, params, rt, service)
	if err != nil {
		return nil, err
	}
	return &Func[R]{engine: e, contract: c}, nil
}

// Contract returns the underlying contract.
func (f *Func[R]) Contract() *Contract { return f.contract }

// Call runs the function. ok is false when the model's answer did not decode or validate,
// in which case r is the zero value.
func (f *Func[R]) Call(ctx context.Context, params map[string]any) (r R, ok bool, err error) {
	out, err := f.engine.Run(ctx, f.contract, params)
	if err != nil || !out.Valid {
		return r, false, err
	}
	data, err := json.Marshal(out.Value)
	if err != nil {
		return r, false, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, false, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return r, true, nil
}
