package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestPaymentMetrics(t *testing.T) (*PaymentMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := NewPaymentMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)
	return pm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewPaymentMetrics_NilMeter(t *testing.T) {
	_, err := NewPaymentMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestPaymentMetrics_Handle(t *testing.T) {
	pm, reader := newTestPaymentMetrics(t)
	ctx := context.Background()

	p := &payment.Payment{
		ID:       uuid.New(),
		OrderID:  uuid.New(),
		Method:   payment.MethodCashOnDelivery,
		Status:   payment.StatusCashPending,
		Amount:   decimal.NewFromInt(1200),
		Currency: payment.CurrencyMKD,
	}
	require.NoError(t, pm.Handle(ctx, payment.NewPaymentCreatedEvent(p)))

	p.Status = payment.StatusCashReceived
	require.NoError(t, pm.Handle(ctx, payment.NewPaymentStatusChangedEvent(p, payment.StatusCashPending, "cash_confirmation")))
	require.NoError(t, pm.Handle(ctx, payment.NewPaymentStatusChangedEvent(p, payment.StatusCashPending, "update")))

	order := &payment.Order{ID: p.OrderID, PaymentStatus: payment.StatusCashReceived, Status: payment.OrderStatusDelivered}
	require.NoError(t, pm.Handle(ctx, payment.NewOrderPaymentStatusChangedEvent(order, payment.StatusCashPending)))

	pm.RecordWebhook(ctx, "duplicate")

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["payment_created_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["payment_status_transition_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["order_payment_status_change_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["payment_webhook_delivery_total"]))

	hist, ok := metrics["payment_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, float64(1200), hist.DataPoints[0].Sum)

	transitions := metrics["payment_status_transition_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, transitions.DataPoints, 2, "one series per source")
}

func TestPaymentMetrics_EventTypes(t *testing.T) {
	pm, _ := newTestPaymentMetrics(t)
	assert.ElementsMatch(t, []string{
		payment.EventTypePaymentCreated,
		payment.EventTypePaymentStatusChanged,
		payment.EventTypeOrderPaymentStatusChanged,
	}, pm.EventTypes())
}
