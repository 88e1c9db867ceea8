package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestQueryTracing_Initialize(t *testing.T) {
	_, recorder := useSpanRecorder(t)
	db := setupTracingDB(t)

	require.NoError(t, db.Use(NewQueryTracing("storefront", nil)))
	assert.NotNil(t, db.Callback().Query().Get("query_annotate:query"))
	assert.ErrorIs(t, db.Use(NewQueryTracing("storefront", nil)), gorm.ErrRegistered)

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)

	assert.NotEmpty(t, recorder.Ended(), "otelgorm should emit query spans")
}

func TestQueryTracing_Annotate(t *testing.T) {
	tp, recorder := useSpanRecorder(t)
	db := setupTracingDB(t)
	plugin := NewQueryTracing("storefront", zap.NewNop())
	plugin.SlowThreshold = 100 * time.Millisecond

	t.Run("rows and table", func(t *testing.T) {
		ctx, span := tp.Tracer("test").Start(context.Background(), "create")
		result := db.WithContext(ctx).Create(&[]tracedRow{{Name: "a"}, {Name: "b"}})
		require.NoError(t, result.Error)

		plugin.annotate(result)
		span.End()

		attrs := attrMap(recorder.Ended()[len(recorder.Ended())-1])
		assert.Equal(t, int64(2), attrs["db.rows_affected"].AsInt64())
		assert.Equal(t, "traced_rows", attrs["db.sql.table"].AsString())
		_, slow := attrs["db.slow_query"]
		assert.False(t, slow)
	})

	t.Run("slow query", func(t *testing.T) {
		ctx, span := tp.Tracer("test").Start(context.Background(), "slow")
		ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))

		plugin.annotate(db.WithContext(ctx))
		span.End()

		attrs := attrMap(recorder.Ended()[len(recorder.Ended())-1])
		assert.True(t, attrs["db.slow_query"].AsBool())
		assert.GreaterOrEqual(t, attrs["db.query_duration_ms"].AsInt64(), int64(1000))
	})

	t.Run("errors mark the span except not found", func(t *testing.T) {
		ctx, span := tp.Tracer("test").Start(context.Background(), "error")
		tx := db.WithContext(ctx)
		tx.Error = gorm.ErrRecordNotFound
		plugin.annotate(tx)
		span.End()
		assert.NotEqual(t, codes.Error, recorder.Ended()[len(recorder.Ended())-1].Status().Code)

		ctx, span = tp.Tracer("test").Start(context.Background(), "error")
		tx = db.WithContext(ctx)
		tx.Error = errors.New("connection reset")
		plugin.annotate(tx)
		span.End()
		assert.Equal(t, codes.Error, recorder.Ended()[len(recorder.Ended())-1].Status().Code)
	})
}
