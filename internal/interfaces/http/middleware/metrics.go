package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// requestMeter holds the per-route HTTP instruments
type requestMeter struct {
	served   *telemetry.Counter
	latency  *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newRequestMeter(meter metric.Meter) (rm *requestMeter, err error) {
	rm = &requestMeter{}
	if rm.served, err = telemetry.NewCounter(meter,
		"http_server_request_total", "Requests served, by route and status", "{request}"); err != nil {
		return nil, err
	}
	if rm.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "Time spent serving a request",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if rm.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return rm, nil
}

// observe records one finished request. Unmatched paths share the "unknown"
// route so arbitrary URLs cannot grow the series count.
func (rm *requestMeter) observe(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	rm.latency.RecordDuration(ctx, elapsed, attrs...)
	rm.served.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
}

// HTTPMetrics records request count, latency and concurrency per route.
// Without a meter, or when the instruments cannot be registered, requests
// pass straight through.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	passthrough := func(c *gin.Context) { c.Next() }
	if meter == nil {
		return passthrough
	}
	rm, err := newRequestMeter(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics unavailable", zap.Error(err))
		}
		return passthrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		began := time.Now()
		rm.inFlight.Add(ctx, 1)
		defer func() {
			rm.inFlight.Add(ctx, -1)
			rm.observe(ctx, c, time.Since(began))
		}()
		c.Next()
	}
}
