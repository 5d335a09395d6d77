package typeexpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for typeexpr. Use errors.Is to check.
var (
	// ErrSchemaAmbiguous is returned when a schema does not resolve to a single canonical kind
	// (heterogeneous enum or anyOf).
	ErrSchemaAmbiguous = errors.New("schema is ambiguous")
	// ErrEmptyUnion is returned when a union has no members once "undefined" is removed.
	ErrEmptyUnion = errors.New("union has no members")
	// ErrUnrepresentable matches every UnrepresentableTypeError.
	ErrUnrepresentable = errors.New("unrepresentable type")
)

// UnrepresentableTypeError reports a shape outside the Type Expression model
// (intersections, functions, non-string map keys, untyped values).
type UnrepresentableTypeError struct {
	What string
}

func (e *UnrepresentableTypeError) Error() string {
	return fmt.Sprintf("unrepresentable type: %s", e.What)
}

// Unwrap supports errors.Is(err, ErrUnrepresentable).
func (e *UnrepresentableTypeError) Unwrap() error { return ErrUnrepresentable }

// HintSyntaxError is returned by ParseHint for malformed type-hint text.
type HintSyntaxError struct {
	Offset int
	Msg    string
}

func (e *HintSyntaxError) Error() string {
	return fmt.Sprintf("type hint syntax error at offset %d: %s", e.Offset, e.Msg)
}
