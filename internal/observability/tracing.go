package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts every discovrr span. InitTracing replaces it.
var Tracer trace.Tracer = otel.Tracer("discovrr")

// Span attribute keys.
const (
	AttrThunkName      = attribute.Key("thunk.name")
	AttrThunkSlice     = attribute.Key("thunk.slice")
	AttrThunkRequestID = attribute.Key("thunk.request_id")
	AttrThunkOutcome   = attribute.Key("thunk.outcome")
	AttrRequestID      = attribute.Key("request.id")
	AttrProfileID      = attribute.Key("profile.id")
)

// TracingConfig selects the exporter for thunk and request spans.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	SamplerRatio   float64
}

func (cfg TracingConfig) exporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "otlp" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func (cfg TracingConfig) sampler() sdktrace.Sampler {
	if cfg.SamplerRatio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerRatio))
}

// InitTracing installs the tracer provider and returns its shutdown. When
// tracing is disabled spans go to the no-op global provider.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()
	exporter, err := cfg.exporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s trace exporter: %w", cfg.Exporter, err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(cfg.ServiceName)
	return tp.Shutdown, nil
}

// ThunkSpan traces one async action run from its gate to its settled phase.
type ThunkSpan struct {
	span trace.Span
}

// StartThunkSpan opens the span for a run of the named async action. The
// slice is the action name prefix, "posts" for "posts/fetchOne".
func StartThunkSpan(ctx context.Context, name, requestID string) (*ThunkSpan, context.Context) {
	slice, _, _ := strings.Cut(name, "/")
	ctx, span := Tracer.Start(ctx, "thunk "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrThunkName.String(name),
			AttrThunkSlice.String(slice),
			AttrThunkRequestID.String(requestID),
		),
	)
	return &ThunkSpan{span: span}, ctx
}

// Skipped marks a run whose precondition did not hold.
func (s *ThunkSpan) Skipped() {
	s.span.SetAttributes(AttrThunkOutcome.String("skipped"))
	s.span.AddEvent("condition_failed")
}

// Pending marks the pending action as dispatched.
func (s *ThunkSpan) Pending() {
	s.span.AddEvent("pending")
}

// Settled records the outcome of the remote call.
func (s *ThunkSpan) Settled(err error) {
	if err != nil {
		s.span.SetAttributes(AttrThunkOutcome.String("rejected"))
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetAttributes(AttrThunkOutcome.String("fulfilled"))
}

// End closes the span.
func (s *ThunkSpan) End() {
	s.span.End()
}

// RequestSpan traces one HTTP request against the facade.
type RequestSpan struct {
	span trace.Span
}

// StartRequestSpan opens a server span continuing any trace in carrier.
func StartRequestSpan(ctx context.Context, carrier propagation.TextMapCarrier, method, path string, attrs ...attribute.KeyValue) (*RequestSpan, context.Context) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	ctx, span := Tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		}, attrs...)...),
	)
	return &RequestSpan{span: span}, ctx
}

// TraceID returns the hex trace id, or "" when the span is not recording.
func (s *RequestSpan) TraceID() string {
	sc := s.span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Finish records the response and closes the span. An empty profileID is
// left off the span.
func (s *RequestSpan) Finish(status int, profileID string, err error) {
	s.span.SetAttributes(attribute.Int("http.status_code", status))
	if profileID != "" {
		s.span.SetAttributes(AttrProfileID.String(profileID))
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}
