package instrument

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reval-dev/reval/pkg/reval"
)

// Default tracer name for reval cell operations.
const defaultTracerName = "reval"

// OTelConfig configures cell tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "reval").
	TracerName string

	// Attributes are added to every span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures cell tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// TracedCell wraps a writable cell so each write runs inside a span. The
// tracer comes from the global OpenTelemetry tracer provider; configure it
// in main() before tracing cells.
//
// Example:
//
//	price := reval.New(9.99)
//	traced := instrument.Traced[float64](price, "catalog.price",
//	    instrument.WithAttributes(attribute.String("sku", "A-100")),
//	)
//	if err := traced.Set(ctx, 12.50); err != nil { ... }
type TracedCell[T any] struct {
	cell  reval.Writable[T]
	name  string
	attrs []attribute.KeyValue

	tracer trace.Tracer
}

// Traced wraps cell with spans named after name ("<name>.set" per write).
func Traced[T any](cell reval.Writable[T], name string, opts ...OTelOption) *TracedCell[T] {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return &TracedCell[T]{
		cell:   cell,
		name:   name,
		attrs:  config.Attributes,
		tracer: config.tracer,
	}
}

// Get returns the cell's current value. Reads are not traced.
func (t *TracedCell[T]) Get() T { return t.cell.Get() }

// Set writes v inside a span, recording the outcome.
func (t *TracedCell[T]) Set(ctx context.Context, v T) error {
	_, span := t.tracer.Start(ctx, t.name+".set",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.attrs...),
	)
	defer span.End()

	span.SetAttributes(attribute.String("reval.value_type", fmt.Sprintf("%T", v)))

	err := t.cell.Set(v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Update replaces the value with fn(current) inside a span.
func (t *TracedCell[T]) Update(ctx context.Context, fn func(T) T) error {
	_, span := t.tracer.Start(ctx, t.name+".update",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.attrs...),
	)
	defer span.End()

	err := t.cell.Update(fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Unwrap returns the underlying cell for observer registration and
// derivation.
func (t *TracedCell[T]) Unwrap() reval.Writable[T] { return t.cell }
