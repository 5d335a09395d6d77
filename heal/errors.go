package heal

import (
	"errors"
	"fmt"

	"github.com/skosovsky/promptfn/typeexpr"
)

var (
	// ErrSyntax matches every SyntaxError.
	ErrSyntax = errors.New("heal: syntax error")
	// ErrTypeMismatch matches every TypeMismatchError.
	ErrTypeMismatch = errors.New("heal: type mismatch")
	// ErrTooDeep is returned when nesting exceeds Decoder.MaxDepth.
	ErrTooDeep = errors.New("heal: nesting too deep")
	// ErrTooLarge is returned when input exceeds Decoder.MaxBytes.
	ErrTooLarge = errors.New("heal: input too large")
)

// SyntaxError reports where the text stopped being readable.
// Offset is a byte offset into the primed text.
type SyntaxError struct {
	Offset int
	Msg    string
	// Err is set for limit violations (ErrTooDeep).
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("heal: syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSyntax, e.Err}
	}
	return []error{ErrSyntax}
}

// TypeMismatchError is returned when an unwrapped scalar does not have the expected kind.
type TypeMismatchError struct {
	Want typeexpr.Shape
	Got  any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("heal: expected %s value, got %s", e.Want, kindOf(e.Got))
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
