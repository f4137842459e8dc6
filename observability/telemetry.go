// Package observability provides OpenTelemetry integration and audit
// logging for process lifecycle events.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry records process lifecycle metrics and trace spans.
type Telemetry interface {
	// StartSpan starts a new trace span.
	StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, func())

	// RecordSpawn records a successful process spawn.
	RecordSpawn(ctx context.Context, name string)

	// RecordTermination records a process exit or forced termination.
	RecordTermination(ctx context.Context, name, reason string)

	// RecordRejection records a spawn refused before any OS side effect.
	RecordRejection(ctx context.Context, reason string)

	// RecordDuration records a process lifetime in seconds.
	RecordDuration(ctx context.Context, name string, seconds float64)

	// AddActive adjusts the live process gauge.
	AddActive(ctx context.Context, delta int64)
}

// SpanOption configures span creation.
type SpanOption func(*spanConfig)

type spanConfig struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute adds an attribute to the span.
func WithAttribute(key string, value interface{}) SpanOption {
	return func(c *spanConfig) {
		switch v := value.(type) {
		case string:
			c.attributes = append(c.attributes, attribute.String(key, v))
		case int:
			c.attributes = append(c.attributes, attribute.Int(key, v))
		case int64:
			c.attributes = append(c.attributes, attribute.Int64(key, v))
		case bool:
			c.attributes = append(c.attributes, attribute.Bool(key, v))
		}
	}
}

// WithSpanKind sets the span kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) {
		c.kind = kind
	}
}

// TelemetryConfig configures telemetry.
type TelemetryConfig struct {
	// ServiceName is the service name for tracing.
	ServiceName string

	// EnableTracing enables distributed tracing.
	EnableTracing bool

	// EnableMetrics enables metrics collection.
	EnableMetrics bool

	// MetricsPrefix is the prefix for all metrics.
	MetricsPrefix string
}

// DefaultTelemetryConfig returns default configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		ServiceName:   "goproc",
		EnableTracing: true,
		EnableMetrics: true,
		MetricsPrefix: "goproc_",
	}
}

type telemetry struct {
	config TelemetryConfig
	tracer trace.Tracer
	meter  metric.Meter

	spawnCounter       metric.Int64Counter
	terminationCounter metric.Int64Counter
	rejectionCounter   metric.Int64Counter
	lifetimeHistogram  metric.Float64Histogram
	activeProcesses    metric.Int64UpDownCounter
}

// NewTelemetry creates a telemetry instance backed by the global
// OpenTelemetry providers.
func NewTelemetry(config TelemetryConfig) (Telemetry, error) {
	t := &telemetry{
		config: config,
		tracer: otel.Tracer(config.ServiceName),
		meter:  otel.Meter(config.ServiceName),
	}

	var err error

	t.spawnCounter, err = t.meter.Int64Counter(
		config.MetricsPrefix+"spawns_total",
		metric.WithDescription("Total number of processes spawned"),
	)
	if err != nil {
		return nil, err
	}

	t.terminationCounter, err = t.meter.Int64Counter(
		config.MetricsPrefix+"terminations_total",
		metric.WithDescription("Total number of process terminations"),
	)
	if err != nil {
		return nil, err
	}

	t.rejectionCounter, err = t.meter.Int64Counter(
		config.MetricsPrefix+"rejections_total",
		metric.WithDescription("Total number of spawns rejected before execution"),
	)
	if err != nil {
		return nil, err
	}

	t.lifetimeHistogram, err = t.meter.Float64Histogram(
		config.MetricsPrefix+"process_lifetime_seconds",
		metric.WithDescription("Process lifetime from spawn to reap"),
	)
	if err != nil {
		return nil, err
	}

	t.activeProcesses, err = t.meter.Int64UpDownCounter(
		config.MetricsPrefix+"active_processes",
		metric.WithDescription("Number of currently running processes"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// StartSpan implements Telemetry.StartSpan.
func (t *telemetry) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, func()) {
	if !t.config.EnableTracing {
		return ctx, func() {}
	}

	cfg := &spanConfig{
		kind: trace.SpanKindInternal,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithAttributes(cfg.attributes...),
		trace.WithSpanKind(cfg.kind),
	)

	return ctx, func() {
		span.End()
	}
}

// RecordSpawn implements Telemetry.RecordSpawn.
func (t *telemetry) RecordSpawn(ctx context.Context, name string) {
	if !t.config.EnableMetrics {
		return
	}
	t.spawnCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("process", name)))
}

// RecordTermination implements Telemetry.RecordTermination.
func (t *telemetry) RecordTermination(ctx context.Context, name, reason string) {
	if !t.config.EnableMetrics {
		return
	}
	t.terminationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("process", name),
		attribute.String("reason", reason),
	))
}

// RecordRejection implements Telemetry.RecordRejection.
func (t *telemetry) RecordRejection(ctx context.Context, reason string) {
	if !t.config.EnableMetrics {
		return
	}
	t.rejectionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordDuration implements Telemetry.RecordDuration.
func (t *telemetry) RecordDuration(ctx context.Context, name string, seconds float64) {
	if !t.config.EnableMetrics {
		return
	}
	t.lifetimeHistogram.Record(ctx, seconds, metric.WithAttributes(attribute.String("process", name)))
}

// AddActive implements Telemetry.AddActive.
func (t *telemetry) AddActive(ctx context.Context, delta int64) {
	if !t.config.EnableMetrics {
		return
	}
	t.activeProcesses.Add(ctx, delta)
}

// NoopTelemetry returns a no-op telemetry implementation.
func NoopTelemetry() Telemetry {
	return &noopTelemetry{}
}

type noopTelemetry struct{}

func (t *noopTelemetry) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, func()) {
	return ctx, func() {}
}

func (t *noopTelemetry) RecordSpawn(ctx context.Context, name string)                {}
func (t *noopTelemetry) RecordTermination(ctx context.Context, name, reason string)  {}
func (t *noopTelemetry) RecordRejection(ctx context.Context, reason string)          {}
func (t *noopTelemetry) RecordDuration(ctx context.Context, name string, s float64)  {}
func (t *noopTelemetry) AddActive(ctx context.Context, delta int64)                  {}
