package template

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter matches every MissingParameterError.
	ErrMissingParameter = errors.New("template: missing parameter")
	// ErrTooManyCompletionMarkers is returned when {{completion}} occurs more than once.
	ErrTooManyCompletionMarkers = errors.New("template: more than one {{completion}} marker")
	// ErrCompletionRejected is returned by Prompt.Accept when the completion fails Validate.
	ErrCompletionRejected = errors.New("template: completion rejected")
)

// MissingParameterError names a {{variable}} with no value in params.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("template: missing parameter %q", e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }
