package telemetry

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when PaymentMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// PaymentMetrics turns payment domain events into counters. It subscribes to
// the event bus, so nothing in the payment services depends on it.
type PaymentMetrics struct {
	logger *zap.Logger

	paymentsCreated    *Counter
	paymentAmount      *Histogram
	statusTransitions  *Counter
	orderStatusChanges *Counter
	webhookDeliveries  *Counter
}

// NewPaymentMetrics registers the payment instruments on meter
func NewPaymentMetrics(meter metric.Meter, logger *zap.Logger) (*PaymentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PaymentMetrics{logger: logger.Named("payment_metrics")}
	var err error

	if pm.paymentsCreated, err = NewCounter(meter,
		"payment_created_total", "Payment attempts recorded", "{payment}"); err != nil {
		return nil, err
	}
	if pm.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "payment_amount",
		Description: "Amount of recorded payment attempts",
		Unit:        "1",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if pm.statusTransitions, err = NewCounter(meter,
		"payment_status_transition_total", "Payment status changes by trigger", "{transition}"); err != nil {
		return nil, err
	}
	if pm.orderStatusChanges, err = NewCounter(meter,
		"order_payment_status_change_total", "Derived order payment status changes", "{change}"); err != nil {
		return nil, err
	}
	if pm.webhookDeliveries, err = NewCounter(meter,
		"payment_webhook_delivery_total", "Provider webhook deliveries by outcome", "{delivery}"); err != nil {
		return nil, err
	}
	return pm, nil
}

// EventTypes implements shared.EventHandler
func (pm *PaymentMetrics) EventTypes() []string {
	return []string{
		payment.EventTypePaymentCreated,
		payment.EventTypePaymentStatusChanged,
		payment.EventTypeOrderPaymentStatusChanged,
	}
}

// Handle implements shared.EventHandler
func (pm *PaymentMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *payment.PaymentCreatedEvent:
		pm.paymentsCreated.Inc(ctx,
			AttrPaymentMethod.String(string(e.Method)),
			AttrPaymentStatus.String(string(e.Status)),
		)
		pm.paymentAmount.Record(ctx, e.Amount.InexactFloat64(),
			AttrPaymentMethod.String(string(e.Method)),
			AttrCurrency.String(string(e.Currency)),
		)
	case *payment.PaymentStatusChangedEvent:
		pm.statusTransitions.Inc(ctx,
			AttrPaymentMethod.String(string(e.Method)),
			AttrPreviousStatus.String(string(e.OldStatus)),
			AttrPaymentStatus.String(string(e.NewStatus)),
			AttrSource.String(e.Source),
		)
	case *payment.OrderPaymentStatusChangedEvent:
		pm.orderStatusChanges.Inc(ctx,
			AttrPaymentStatus.String(string(e.NewPaymentStatus)),
			AttrOrderStatus.String(string(e.OrderStatus)),
		)
	default:
		pm.logger.Debug("Ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// RecordWebhook counts one provider webhook delivery
func (pm *PaymentMetrics) RecordWebhook(ctx context.Context, outcome string) {
	pm.webhookDeliveries.Inc(ctx, AttrOutcome.String(outcome))
}

var _ shared.EventHandler = (*PaymentMetrics)(nil)
