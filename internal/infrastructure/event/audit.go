package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentAuditLogger writes one structured log line per payment event so
// status history can be followed in the log pipeline
type PaymentAuditLogger struct {
	logger *zap.Logger
}

// NewPaymentAuditLogger creates a PaymentAuditLogger
func NewPaymentAuditLogger(l *zap.Logger) *PaymentAuditLogger {
	return &PaymentAuditLogger{logger: l.Named("payment_audit")}
}

// EventTypes implements shared.EventHandler
func (h *PaymentAuditLogger) EventTypes() []string {
	return []string{
		payment.EventTypePaymentCreated,
		payment.EventTypePaymentStatusChanged,
		payment.EventTypeOrderPaymentStatusChanged,
	}
}

// Handle implements shared.EventHandler
func (h *PaymentAuditLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	switch e := event.(type) {
	case *payment.PaymentCreatedEvent:
		log.Info("Payment created",
			zap.String("payment_id", e.AggregateID().String()),
			zap.String("order_id", e.OrderID.String()),
			zap.String("method", string(e.Method)),
			zap.String("status", string(e.Status)),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("currency", string(e.Currency)),
		)
	case *payment.PaymentStatusChangedEvent:
		log.Info("Payment status changed",
			zap.String("payment_id", e.AggregateID().String()),
			zap.String("order_id", e.OrderID.String()),
			zap.String("old_status", string(e.OldStatus)),
			zap.String("new_status", string(e.NewStatus)),
			zap.String("source", e.Source),
		)
	case *payment.OrderPaymentStatusChangedEvent:
		log.Info("Order payment status changed",
			zap.String("order_id", e.AggregateID().String()),
			zap.String("old_payment_status", string(e.OldPaymentStatus)),
			zap.String("new_payment_status", string(e.NewPaymentStatus)),
			zap.String("order_status", string(e.OrderStatus)),
		)
	default:
		log.Debug("Unhandled event")
	}
	return nil
}

var _ shared.EventHandler = (*PaymentAuditLogger)(nil)
