package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nels-koby/glint/internal/asynchook"
	"github.com/nels-koby/glint/internal/event"
)

// TracedAsyncHook wraps an asynchook.AsyncHook so every FinishDebounce
// call (the end of a debounce cycle, where the actual work happens) runs
// inside a span named spanName. HandleEvent passes through untouched —
// it fires on every raw event and would dwarf the signal with per-
// keystroke spans.
func TracedAsyncHook[E any](tracer trace.Tracer, spanName string, hook asynchook.AsyncHook[E]) asynchook.AsyncHook[E] {
	return &tracedAsyncHook[E]{tracer: tracer, spanName: spanName, inner: hook}
}

type tracedAsyncHook[E any] struct {
	tracer   trace.Tracer
	spanName string
	inner    asynchook.AsyncHook[E]
}

func (t *tracedAsyncHook[E]) HandleEvent(e E, deadline time.Time) time.Time {
	return t.inner.HandleEvent(e, deadline)
}

func (t *tracedAsyncHook[E]) FinishDebounce() {
	_, span := t.tracer.Start(context.Background(), t.spanName)
	defer span.End()
	t.inner.FinishDebounce()
	span.SetStatus(codes.Ok, "")
}

// TracedHook wraps an event.Hook so every dispatch to it runs inside a
// span named spanName, recording the hook's error (if any) as a span
// error without altering event.Dispatch's continue-past-errors
// semantics.
func TracedHook[E any](tracer trace.Tracer, spanName string, hook event.Hook[E]) event.Hook[E] {
	return event.HookFunc[E](func(e *E) error {
		_, span := tracer.Start(context.Background(), spanName, trace.WithSpanKind(trace.SpanKindInternal))
		defer span.End()

		err := hook.Run(e)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// Attr is a convenience re-export so callers building span attributes
// alongside a TracedHook/TracedAsyncHook don't need a second otel import
// just for attribute.KeyValue construction.
var Attr = attribute.String
