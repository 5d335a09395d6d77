package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/promptfn/report"
)

// RecordingReporter keeps every event it receives. Err, when set, is returned from Report
// after the event is recorded.
type RecordingReporter struct {
	Err error

	mu     sync.Mutex
	events []report.Event
}

// Report records ev.
func (r *RecordingReporter) Report(_ context.Context, ev report.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *RecordingReporter) Events() []report.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report.Event(nil), r.events...)
}

var _ report.Reporter = (*RecordingReporter)(nil)
