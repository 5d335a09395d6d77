package promptfn

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skosovsky/promptfn/report"
)

// Sentinel errors for promptfn. Use errors.Is to check.
var (
	ErrMalformedAnnotation = errors.New("malformed annotation")
	ErrMissingCredential   = errors.New("missing provider credential")
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrDecodeFailure       = errors.New("decode failure")
	ErrValidationFailure   = errors.New("validation failure")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrShutdown            = errors.New("registry is shutting down")
	ErrInvalidContract     = errors.New("invalid contract")
	ErrNoProvider          = errors.New("no completion provider configured")
	// ErrReportURLMissing is returned by New when a project key is configured without a report URL.
	ErrReportURLMissing = report.ErrURLMissing
)

// AnnotationError reports a doc comment that is not a single /** ... */ block.
type AnnotationError struct {
	Function string
	Reason   string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("malformed annotation on %s: %s", e.Function, e.Reason)
}

func (e *AnnotationError) Unwrap() error { return ErrMalformedAnnotation }

// ProviderError is a failed call to a completion endpoint. Status is the HTTP status
// (0 when the request never got a response).
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString("provider ")
	b.WriteString(e.Provider)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is worth another attempt: a ProviderError with
// status 429 or 5xx, or a provider timeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrProviderTimeout) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status == http.StatusTooManyRequests || pe.Status >= 500
	}
	return false
}

// ValidationError carries one "/path: message" line per schema violation.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failure: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailure }

// PanicError wraps a value recovered from a panicking provider.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "panic: " + fmt.Sprint(e.Value)
}
