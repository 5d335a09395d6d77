package promptfn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/report"
)

// Stage is the step a call reached.
type Stage int

const (
	StageBuilding Stage = iota
	StagePrimed
	StageAwaitingProvider
	StageDecoding
	StageValidating
	StageReturned
	StageFailed
)

var stageNames = [...]string{
	StageBuilding:         "building",
	StagePrimed:           "primed",
	StageAwaitingProvider: "awaiting_provider",
	StageDecoding:         "decoding",
	StageValidating:       "validating",
	StageReturned:         "returned",
	StageFailed:           "failed",
}

func (s Stage) String() string {
	if int(s) >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Outcome describes one call. Value is set only when Valid.
type Outcome struct {
	Value      any
	Valid      bool
	Errors     []string
	Completion string
	Model      string
	Family     Family
	Elapsed    time.Duration
	EventID    string
	Stage      Stage
}

// Engine fulfils contracts by prompting a Provider and decoding its answer.
// It is safe for concurrent use; calls share only the read-only Config and the
// compiled-schema cache.
type Engine struct {
	cfg        Config
	provider   Provider
	logger     *slog.Logger
	reporter   report.Reporter
	decoder    heal.Decoder
	validators *validatorCache
}

// New builds an Engine. The provider is wrapped, outermost first, in the middlewares
// given with WithMiddleware, Retrying(cfg.Retry) and WithTimeout(cfg.Timeout).
// A project key without a report URL is ErrReportURLMissing.
func New(cfg Config, opts ...Option) (*Engine, error) {
	o := engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		return nil, ErrNoProvider
	}
	if cfg.ProjectKey != "" && cfg.ReportURL == "" && o.reporter == nil {
		return nil, ErrReportURLMissing
	}
	reporter := o.reporter
	if reporter == nil && cfg.ProjectKey != "" {
		client, err := report.New(cfg.ReportURL, cfg.ProjectKey)
		if err != nil {
			return nil, err
		}
		reporter = client
	}
	vc, err := newValidatorCache(o.cacheSize)
	if err != nil {
		return nil, err
	}
	chain := append(append([]Middleware(nil), o.middlewares...), Retrying(cfg.Retry), WithTimeout(cfg.Timeout))
	return &Engine{
		cfg:        cfg,
		provider:   Chain(o.provider, chain...),
		logger:     o.logger,
		reporter:   reporter,
		decoder:    o.decoder,
		validators: vc,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Call runs c and returns the decoded value, or nil when the model's answer could not
// be decoded or did not match the return type. Errors are returned only for a
// malformed contract, a template failure or a provider that kept failing.
func (e *Engine) Call(ctx context.Context, c *Contract, params map[string]any) (any, error) {
	out, err := e.Run(ctx, c, params)
	if err != nil {
		return nil, err
	}
	if !out.Valid {
		return nil, nil
	}
	return out.Value, nil
}

// Run executes c with params and reports every step in the Outcome.
func (e *Engine) Run(ctx context.Context, c *Contract, params map[string]any) (*Outcome, error) {
	out := &Outcome{Stage: StageBuilding, EventID: report.NewEventID()}
	log := e.logger.With("function", c.name, "event", out.EventID)
	stage := func(s Stage) {
		out.Stage = s
		log.DebugContext(ctx, "stage", "stage", s)
	}
	fail := func(err error) (*Outcome, error) {
		stage(StageFailed)
		return out, err
	}

	if err := CheckAnnotation(c.name, c.doc); err != nil {
		return fail(err)
	}
	prompt, used := buildPrompt(c, params)
	rendered, err := prompt.Render(used)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", c.name, err))
	}
	r := c.service.resolve(e.cfg)
	out.Model, out.Family = r.Model, r.Family
	req := buildRequest(c, r, rendered, e.cfg.Reasoning)
	stage(StagePrimed)
	if e.cfg.LogPrompts {
		log.DebugContext(ctx, "prompt", "model", r.Model, "prompt", req.Prompt, "suffix", req.Suffix, "messages", req.Messages)
	}

	sess := report.NewSession(ctx, e.reporter, e.cfg.ReportTimeout, log)
	defer func() {
		if err := sess.Wait(); err != nil {
			log.WarnContext(ctx, "prompt event not delivered", "error", err)
		}
	}()
	sess.Send(report.Event{
		PromptEventID: out.EventID,
		Contract:      c,
		Params:        used,
		ProjectKey:    e.cfg.ProjectKey,
	})
	finish := func() {
		ms := out.Elapsed.Milliseconds()
		sess.Send(report.Event{
			PromptEventID:  out.EventID,
			Contract:       c,
			Params:         used,
			ProjectKey:     e.cfg.ProjectKey,
			Response:       out.Value,
			ResponseTimeMs: &ms,
			ResponseErrors: out.Errors,
		})
	}

	stage(StageAwaitingProvider)
	start := time.Now()
	comp, err := e.provider.Complete(ctx, req)
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Errors = []string{err.Error()}
		finish()
		return fail(err)
	}
	out.Completion = comp.Text
	if e.cfg.LogPrompts {
		log.DebugContext(ctx, "completion", "text", comp.Text, "finish_reason", comp.FinishReason)
	}

	stage(StageDecoding)
	var ex Extraction
	if text, err := prompt.Accept(comp.Text); err != nil {
		ex = Extraction{Errors: []string{err.Error()}, Err: fmt.Errorf("%w: %w", ErrDecodeFailure, err)}
	} else {
		x := &Extractor{schema: c.schema, prefix: c.prefix, decoder: e.decoder, validators: e.validators}
		ex = x.Extract(text, r.Family)
	}
	stage(StageValidating)
	out.Errors = ex.Errors
	switch {
	case ex.Valid:
		out.Value, out.Valid = ex.Value, true
	case errors.Is(ex.Err, ErrDecodeFailure):
		log.WarnContext(ctx, "completion not decodable", "error", ex.Err)
	default:
		log.WarnContext(ctx, "completion rejected by schema", "errors", ex.Errors)
	}
	finish()
	stage(StageReturned)
	return out, nil
}
