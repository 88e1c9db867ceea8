package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig controls log record export
type LogsConfig struct {
	Collector
	Enabled bool
}

// LoggerProvider ships zap entries to the collector through the otelzap bridge
type LoggerProvider struct {
	sdk   *sdklog.LoggerProvider
	scope string
}

// NewLoggerProvider builds the log pipeline and registers it globally.
// boot reports the outcome; it is the logger that exists before this one.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, boot *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{scope: cfg.ServiceName}
	if !cfg.Enabled {
		boot.Info("Log export disabled")
		return lp, nil
	}

	exporter, err := otlploggrpc.New(ctx,
		dialOptions(cfg.Collector, otlploggrpc.WithEndpoint, otlploggrpc.WithInsecure)...)
	if err != nil {
		return nil, fmt.Errorf("log exporter: %w", err)
	}
	res, err := cfg.describe()
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(lp.sdk)

	boot.Info("Exporting logs", zap.String("endpoint", cfg.Endpoint))
	return lp, nil
}

// IsEnabled reports whether log records leave the process
func (lp *LoggerProvider) IsEnabled() bool { return lp.sdk != nil }

// NewZapCore returns a core forwarding entries at floor or above, for teeing
// next to the console core in logger.New. Disabled providers get a nop core.
func (lp *LoggerProvider) NewZapCore(floor zapcore.Level) zapcore.Core {
	if lp.sdk == nil {
		return zapcore.NewNopCore()
	}
	return &levelFilterCore{
		Core:     otelzap.NewCore(lp.scope, otelzap.WithLoggerProvider(lp.sdk)),
		minLevel: floor,
	}
}

// Shutdown drains queued log records
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	return flush(ctx, "logs", lp.sdk.Shutdown)
}

// levelFilterCore gives the otelzap core, which accepts every level, a floor
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return c.Core.Check(entry, ce)
	}
	return ce
}
