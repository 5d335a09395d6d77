package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single send when the Session is given none.
const DefaultTimeout = 5 * time.Second

// Session runs the sends of one call in the background. It is detached from the
// caller's cancellation so a finished or abandoned call still gets reported.
type Session struct {
	ctx     context.Context
	g       errgroup.Group
	r       Reporter
	timeout time.Duration
	logger  *slog.Logger
}

// NewSession starts a session. A nil Reporter makes every Send a no-op.
func NewSession(ctx context.Context, r Reporter, timeout time.Duration, logger *slog.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{ctx: context.WithoutCancel(ctx), r: r, timeout: timeout, logger: logger}
}

// Send queues ev and returns immediately. Failures are logged at warn level.
func (s *Session) Send(ev Event) {
	if s.r == nil {
		return
	}
	s.g.Go(func() error {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		if err := s.r.Report(ctx, ev); err != nil {
			s.logger.Warn("report failed", "event", ev.PromptEventID, "finished", ev.Finished(), "error", err)
			return err
		}
		return nil
	})
}

// Wait blocks until every queued send finished and returns the first failure.
func (s *Session) Wait() error {
	return s.g.Wait()
}
