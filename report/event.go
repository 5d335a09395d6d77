// Package report sends prompt events to a collection endpoint.
//
// Two events are sent per call: one before the provider is invoked and one after the
// answer has been decoded and validated. Delivery is best effort; a Session runs the
// sends in the background and only logs failures.
package report

import "github.com/google/uuid"

// Event is one begin or finish notification for a call.
// Response, ResponseTimeMs and ResponseErrors are set only on the finish event.
type Event struct {
	PromptEventID  string         `json:"promptEventId"`
	Contract       any            `json:"contract"`
	Params         map[string]any `json:"params"`
	ProjectKey     string         `json:"projectKey"`
	Response       any            `json:"response,omitempty"`
	ResponseTimeMs *int64         `json:"responseTimeMs,omitempty"`
	ResponseErrors []string       `json:"responseErrors,omitempty"`
}

// NewEventID returns a random event id shared by the begin and finish events of a call.
func NewEventID() string { return uuid.NewString() }

// Finished reports whether e carries the outcome of the call.
func (e Event) Finished() bool { return e.ResponseTimeMs != nil }
