package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nels-koby/glint/internal/asynchook"
	"github.com/nels-koby/glint/internal/config"
	"github.com/nels-koby/glint/internal/event"
)

func TestNewProviderDisabledIsNoop(t *testing.T) {
	p, err := NewProvider(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Enabled() {
		t.Fatalf("expected disabled provider")
	}
	if p.Tracer() == nil {
		t.Fatalf("expected a non-nil no-op tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() on disabled provider error = %v", err)
	}
}

func TestNewProviderStdoutExporter(t *testing.T) {
	p, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 1.0})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer p.Shutdown(context.Background())
	if !p.Enabled() {
		t.Fatalf("expected enabled provider")
	}
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "carrier-pigeon"})
	if err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
}

type recordingHook struct {
	events   []int
	finishes int
}

func (h *recordingHook) HandleEvent(e int, deadline time.Time) time.Time {
	h.events = append(h.events, e)
	return deadline
}

func (h *recordingHook) FinishDebounce() { h.finishes++ }

func TestTracedAsyncHookPassesThroughHandleEventAndWrapsFinish(t *testing.T) {
	p, _ := NewProvider(config.TracingConfig{Enabled: false})
	inner := &recordingHook{}
	traced := TracedAsyncHook[int](p.Tracer(), "test.finish", inner)

	d := traced.HandleEvent(42, time.Time{})
	if !d.IsZero() {
		t.Fatalf("expected zero deadline passthrough, got %v", d)
	}
	if len(inner.events) != 1 || inner.events[0] != 42 {
		t.Fatalf("expected HandleEvent to reach inner hook, got %+v", inner.events)
	}

	traced.FinishDebounce()
	if inner.finishes != 1 {
		t.Fatalf("expected FinishDebounce to reach inner hook once, got %d", inner.finishes)
	}
}

func TestTracedAsyncHookSatisfiesInterface(t *testing.T) {
	var _ asynchook.AsyncHook[int] = TracedAsyncHook[int](nil, "x", &recordingHook{})
}

type docEvent struct{ Path string }

func TestTracedHookRecordsErrorButStillReturnsIt(t *testing.T) {
	p, _ := NewProvider(config.TracingConfig{Enabled: false})
	boom := errors.New("boom")
	hook := event.HookFunc[docEvent](func(e *docEvent) error { return boom })

	traced := TracedHook[docEvent](p.Tracer(), "test.hook", hook)
	if err := traced.Run(&docEvent{Path: "a.txt"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook to return the inner error, got %v", err)
	}
}

func TestTracedHookWorksWithRegistry(t *testing.T) {
	p, _ := NewProvider(config.TracingConfig{Enabled: false})
	r := event.NewRegistry()
	event.RegisterEvent[docEvent](r, "doc-saved")

	ran := false
	inner := event.HookFunc[docEvent](func(e *docEvent) error {
		ran = true
		return nil
	})
	event.RegisterHook[docEvent](r, "doc-saved", TracedHook[docEvent](p.Tracer(), "doc.saved", inner))

	event.Dispatch(r, "doc-saved", &docEvent{Path: "a.txt"})
	if !ran {
		t.Fatalf("expected traced hook to run via registry dispatch")
	}
}
