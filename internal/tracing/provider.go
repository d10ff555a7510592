// Package tracing wraps the OpenTelemetry SDK into a Provider that
// glint's diff worker, async hooks, and event dispatch can attach spans
// to, so a `glint watch` session can be traced end to end without any
// of those packages depending on the otel SDK directly. Disabled
// tracing falls back to a no-op tracer so callers never need to branch
// on whether tracing is on. internal/config.TracingConfig selects
// between three exporters: "none", "stdout", and "otlp".
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nels-koby/glint/internal/config"
	"github.com/nels-koby/glint/internal/log"
)

// serviceName identifies this process in exported traces.
const serviceName = "glint"

// Provider manages the OpenTelemetry tracer provider used across
// glint's subsystems. The zero value is not usable; construct one with
// NewProvider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// NewProvider configures a Provider from cfg. If cfg.Enabled is false,
// the returned Provider wraps a no-op tracer so every span-producing
// call site has zero overhead without needing its own enabled check.
func NewProvider(cfg config.TracingConfig) (*Provider, error) {
	if !cfg.Enabled {
		log.Debug(log.CatTracing, "tracing disabled, using no-op provider")
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop"), enabled: false}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
	case "otlp":
		exporter, err = otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating otlp exporter: %w", err)
		}
	case "none", "":
		exporter = nil
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %q", cfg.Exporter)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)

	log.Info(log.CatTracing, "tracing enabled", "exporter", cfg.Exporter, "sample_rate", sampleRate)
	return &Provider{provider: provider, tracer: provider.Tracer(serviceName), enabled: true}, nil
}

// Tracer returns the tracer span-producing call sites (diff.Worker,
// asynchook.Run wrappers, event hooks) should start spans with. Safe to
// use even when tracing is disabled; it is then a no-op tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether tracing was enabled in the config. With the
// "none" exporter spans are recorded but not exported, and Enabled
// still reports true.
func (p *Provider) Enabled() bool { return p.enabled }

// Shutdown flushes any buffered spans and releases the provider's
// resources. Safe to call on a disabled Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
