package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQuery = 200 * time.Millisecond

var (
	attrRowsAffected  = attribute.Key("db.rows_affected")
	attrTable         = attribute.Key("db.sql.table")
	attrSlowQuery     = attribute.Key("db.slow_query")
	attrQueryDuration = attribute.Key("db.query_duration_ms")
)

// QueryTracing is a gorm plugin: otelgorm statement spans, annotated with
// the affected rows, the table, failures and slow statements. Install it
// with db.Use.
type QueryTracing struct {
	DBName string
	// WithVariables keeps bound values in span statements. Off by default
	// since they may carry customer data.
	WithVariables bool
	SlowThreshold time.Duration

	log *zap.Logger
}

func NewQueryTracing(dbName string, log *zap.Logger) *QueryTracing {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryTracing{DBName: dbName, SlowThreshold: defaultSlowQuery, log: log}
}

func (*QueryTracing) Name() string { return "storefront:query_tracing" }

func (q *QueryTracing) Initialize(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(q.DBName)}
	if !q.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("query_timing:create", markStart),
		cb.Query().Before("gorm:query").Register("query_timing:query", markStart),
		cb.Update().Before("gorm:update").Register("query_timing:update", markStart),
		cb.Delete().Before("gorm:delete").Register("query_timing:delete", markStart),
		cb.Row().Before("gorm:row").Register("query_timing:row", markStart),
		cb.Raw().Before("gorm:raw").Register("query_timing:raw", markStart),
		cb.Create().After("gorm:create").Register("query_annotate:create", q.annotate),
		cb.Query().After("gorm:query").Register("query_annotate:query", q.annotate),
		cb.Update().After("gorm:update").Register("query_annotate:update", q.annotate),
		cb.Delete().After("gorm:delete").Register("query_annotate:delete", q.annotate),
		cb.Row().After("gorm:row").Register("query_annotate:row", q.annotate),
		cb.Raw().After("gorm:raw").Register("query_annotate:raw", q.annotate),
	); err != nil {
		return err
	}

	q.log.Info("Database tracing enabled",
		zap.Bool("with_variables", q.WithVariables),
		zap.Duration("slow_query_threshold", q.SlowThreshold),
	)
	return nil
}

type queryStartKey struct{}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// annotate decorates the statement span. A missing record is an answer,
// not a failure, so it leaves the span status alone.
func (q *QueryTracing) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if rows := db.Statement.RowsAffected; rows >= 0 {
		span.SetAttributes(attrRowsAffected.Int64(rows))
	}
	if table := db.Statement.Table; table != "" {
		span.SetAttributes(attrTable.String(table))
	}
	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > q.SlowThreshold {
		span.SetAttributes(attrSlowQuery.Bool(true), attrQueryDuration.Int64(elapsed.Milliseconds()))
	}
}

var _ gorm.Plugin = (*QueryTracing)(nil)
