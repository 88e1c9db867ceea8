package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TraceConfig controls span export
type TraceConfig struct {
	Collector
	Enabled       bool
	SamplingRatio float64
}

// TracerProvider owns the span pipeline. A disabled provider leaves the
// global no-op tracer in place.
type TracerProvider struct {
	sdk          *sdktrace.TracerProvider
	log          *zap.Logger
	spanProfiles atomic.Bool
}

// NewTracerProvider exports spans over OTLP gRPC and installs the provider
// and W3C propagators globally.
func NewTracerProvider(ctx context.Context, cfg TraceConfig, log *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{log: log}
	if !cfg.Enabled {
		log.Info("Span export disabled")
		return tp, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		dialOptions(cfg.Collector, otlptracegrpc.WithEndpoint, otlptracegrpc.WithInsecure)...)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}
	res, err := cfg.describe()
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Info("Exporting spans",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("service", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio))
	return tp, nil
}

// sampler respects the caller's decision and samples root spans by ratio
func sampler(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	if ratio >= 1 {
		root = sdktrace.AlwaysSample()
	} else if ratio <= 0 {
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

// EnableSpanProfiles labels profiler samples with the active span id so
// Pyroscope can link a flame graph to a trace. Start the profiler first.
func (tp *TracerProvider) EnableSpanProfiles() {
	if tp.sdk == nil || !tp.spanProfiles.CompareAndSwap(false, true) {
		return
	}
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.sdk))
	tp.log.Info("Span profiles linked")
}

// Tracer returns a named tracer from the exporting provider, or from the
// global one when export is off.
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.sdk != nil {
		return tp.sdk.Tracer(name, opts...)
	}
	return otel.GetTracerProvider().Tracer(name, opts...)
}

// IsEnabled reports whether spans leave the process
func (tp *TracerProvider) IsEnabled() bool { return tp.sdk != nil }

// Shutdown drains queued spans
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return flush(ctx, "spans", tp.sdk.Shutdown)
}
