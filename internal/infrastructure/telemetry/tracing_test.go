package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func TestStartServiceSpan(t *testing.T) {
	_, recorder := useSpanRecorder(t)
	paymentID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "payment_sync", "sync",
		SpanPaymentID.String(paymentID.String()),
		SpanForceSync.Bool(true),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	EndSpan(span, nil, SpanUpdated.Bool(false), SpanRemote.String("confirmed"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "payment_sync.sync", ended[0].Name())
	assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("payment_id", paymentID.String()),
		attribute.Bool("force", true),
		attribute.Bool("updated", false),
		attribute.String("remote_status", "confirmed"),
	}, ended[0].Attributes())
}

func TestEndSpan_Error(t *testing.T) {
	_, recorder := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "payment_webhook", "handle")
	EndSpan(span, errors.New("order lookup failed"), SpanUpdated.Bool(true))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "order lookup failed", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
	assert.Empty(t, ended[0].Attributes())
}
