// Package telemetry wires OpenTelemetry tracing, metrics and logs plus
// Pyroscope continuous profiling into the service.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported on every exported signal. Overridden at build
// time with -ldflags "-X .../telemetry.ServiceVersion=...".
var ServiceVersion = "dev"

const flushTimeout = 10 * time.Second

// Collector is the OTLP gRPC destination shared by traces, metrics and logs
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// describe returns the resource attached to every exported record
func (c Collector) describe() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("describe service %q: %w", c.ServiceName, err)
	}
	return res, nil
}

// dialOptions builds exporter options for any of the otlp*grpc packages,
// which each declare their own option type.
func dialOptions[O any](c Collector, endpoint func(string) O, insecure func() O) []O {
	opts := []O{endpoint(c.Endpoint)}
	if c.Insecure {
		opts = append(opts, insecure())
	}
	return opts
}

// flush gives stop a bounded window to drain buffered records
func flush(ctx context.Context, signal string, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", signal, err)
	}
	return nil
}
