// Package promptfnotel traces promptfn provider calls with OpenTelemetry.
package promptfnotel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/skosovsky/promptfn"
)

// ScopeName is the instrumentation scope of the spans.
const ScopeName = "github.com/skosovsky/promptfn/ext/promptfnotel"

// SpanName is the name of every completion span.
const SpanName = "promptfn.complete"

// Middleware returns a promptfn.Middleware that records one client span per completion.
// A nil tp uses the no-op provider.
func Middleware(tp trace.TracerProvider) promptfn.Middleware {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	tracer := tp.Tracer(ScopeName)
	return func(next promptfn.Provider) promptfn.Provider {
		return &tracingProvider{next: next, tracer: tracer}
	}
}

type tracingProvider struct {
	next   promptfn.Provider
	tracer trace.Tracer
}

func (t *tracingProvider) Name() string { return t.next.Name() }

func (t *tracingProvider) Complete(ctx context.Context, req promptfn.Request) (*promptfn.Completion, error) {
	ctx, span := t.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("promptfn.provider", t.next.Name()),
			attribute.String("promptfn.model", req.Model),
			attribute.String("promptfn.family", string(req.Family)),
			attribute.Int("promptfn.max_tokens", req.MaxTokens),
			attribute.Float64("promptfn.temperature", req.Temperature),
			attribute.Int("promptfn.messages", len(req.Messages)),
		),
	)
	defer span.End()

	res, err := t.next.Complete(ctx, req)
	if err != nil {
		var pe *promptfn.ProviderError
		if errors.As(err, &pe) && pe.Status != 0 {
			span.SetAttributes(attribute.Int("promptfn.provider.status", pe.Status))
		}
		span.SetAttributes(attribute.Bool("promptfn.retryable", promptfn.IsRetryable(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("promptfn.finish_reason", res.FinishReason),
		attribute.Int("promptfn.completion_bytes", len(res.Text)),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}
