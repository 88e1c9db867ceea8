package payment

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Provider webhook event types that carry payment state
const (
	EventCheckoutUpdated = "checkout.updated"
	EventOrderCreated    = "order.created"
	EventOrderUpdated    = "order.updated"
	EventOrderPaid       = "order.paid"
)

const webhookDedupTTL = 72 * time.Hour

// errStaleWebhook aborts a write whose status no longer advances once the
// payment row is locked
var errStaleWebhook = errors.New("webhook status no longer advances the payment")

// ProviderEvent is a verified, decoded provider webhook delivery
type ProviderEvent struct {
	DeliveryID        string
	Type              string
	CheckoutID        string
	ProviderPaymentID string
	ProviderOrderID   string
	CheckoutStatus    string
	OrderStatus       string
}

// WebhookOutcome describes what a delivery did
type WebhookOutcome string

const (
	WebhookApplied   WebhookOutcome = "applied"
	WebhookUnchanged WebhookOutcome = "unchanged"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookDuplicate WebhookOutcome = "duplicate"
)

// WebhookService applies provider-pushed status changes
type WebhookService struct {
	payments *PaymentService
	dedup    shared.IdempotencyStore
	logger   *zap.Logger
}

// NewWebhookService creates a WebhookService. dedup may be nil.
func NewWebhookService(payments *PaymentService, dedup shared.IdempotencyStore, l *zap.Logger) *WebhookService {
	if l == nil {
		l = zap.NewNop()
	}
	return &WebhookService{payments: payments, dedup: dedup, logger: l.Named("payment_webhook")}
}

// HandleProviderEvent applies one delivery. Redeliveries of the same id are
// acknowledged without effect. Events for unknown or non-card payments are ignored.
func (s *WebhookService) HandleProviderEvent(ctx context.Context, ev ProviderEvent) (WebhookOutcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_webhook", "handle",
		telemetry.SpanDeliveryID.String(ev.DeliveryID),
		telemetry.SpanEventType.String(ev.Type),
	)
	outcome, err := s.handle(ctx, ev)
	if err != nil {
		telemetry.EndSpan(span, err)
		return outcome, err
	}
	telemetry.EndSpan(span, nil, telemetry.AttrOutcome.String(string(outcome)))
	return outcome, nil
}

func (s *WebhookService) handle(ctx context.Context, ev ProviderEvent) (WebhookOutcome, error) {
	log := logger.Enrich(ctx, s.logger).With(
		zap.String("delivery_id", ev.DeliveryID),
		zap.String("event_type", ev.Type))

	target, ok := targetStatus(ev)
	if !ok {
		log.Debug("Ignoring webhook event type")
		return WebhookIgnored, nil
	}

	dedupKey := "polar:webhook:" + ev.DeliveryID
	if s.dedup != nil && ev.DeliveryID != "" {
		fresh, err := s.dedup.MarkProcessed(ctx, dedupKey, webhookDedupTTL)
		if err != nil {
			log.Warn("Webhook dedup check failed, processing anyway", zap.Error(err))
		} else if !fresh {
			log.Info("Duplicate webhook delivery")
			return WebhookDuplicate, nil
		}
	}

	outcome, err := s.apply(ctx, ev, target)
	if err != nil && s.dedup != nil && ev.DeliveryID != "" {
		if ferr := s.dedup.Forget(ctx, dedupKey); ferr != nil {
			log.Warn("Failed to clear webhook dedup mark", zap.Error(ferr))
		}
	}
	return outcome, err
}

func (s *WebhookService) apply(ctx context.Context, ev ProviderEvent, target payment.Status) (WebhookOutcome, error) {
	log := logger.Enrich(ctx, s.logger).With(zap.String("delivery_id", ev.DeliveryID))

	p, err := s.locate(ctx, ev)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			log.Info("Webhook references unknown payment",
				zap.String("checkout_id", ev.CheckoutID),
				zap.String("provider_payment_id", ev.ProviderPaymentID))
			return WebhookIgnored, nil
		}
		return "", s.payments.lookupFailure(ctx, err)
	}
	if !p.IsSyncable() {
		return WebhookIgnored, nil
	}

	var patch payment.Patch
	if target != p.Status {
		if advances(p.Status, target) {
			patch.Status = &target
		} else {
			log.Info("Ignoring out-of-order webhook status",
				zap.String("payment_id", p.ID.String()),
				zap.String("current_status", p.Status.String()),
				zap.String("event_status", target.String()))
		}
	}
	if ev.ProviderOrderID != "" && p.ProviderOrderID == "" {
		patch.ProviderOrderID = &ev.ProviderOrderID
	}
	if ev.ProviderPaymentID != "" && p.ProviderPaymentID == "" {
		patch.ProviderPaymentID = &ev.ProviderPaymentID
	}
	if patch.IsEmpty() {
		return WebhookUnchanged, nil
	}

	previous, next := p.Status, p.Status
	if patch.Status != nil {
		next = *patch.Status
	}
	_, err = s.payments.mutate(ctx, p.ID, mutation{
		source:    SourceWebhook,
		aggregate: patch.TouchesStatus(),
		apply: func(p *payment.Payment) error {
			if patch.Status != nil && !advances(p.Status, *patch.Status) {
				return errStaleWebhook
			}
			if err := p.Apply(patch); err != nil {
				return err
			}
			p.Metadata.Webhooks = append(p.Metadata.Webhooks, payment.WebhookEntry{
				DeliveryID:     ev.DeliveryID,
				EventType:      ev.Type,
				ReceivedAt:     p.UpdatedAt,
				PreviousStatus: previous,
				NewStatus:      p.Status,
			})
			return nil
		},
	})
	if errors.Is(err, errStaleWebhook) {
		log.Info("Payment moved on before the webhook was applied", zap.String("payment_id", p.ID.String()))
		return WebhookUnchanged, nil
	}
	if err != nil {
		return "", s.payments.failure(ctx, err, payment.ErrUpdatePaymentFailed, "Failed to apply webhook",
			zap.String("payment_id", p.ID.String()))
	}
	log.Info("Webhook applied",
		zap.String("payment_id", p.ID.String()),
		zap.String("previous_status", previous.String()),
		zap.String("new_status", next.String()))
	return WebhookApplied, nil
}

func (s *WebhookService) locate(ctx context.Context, ev ProviderEvent) (*payment.Payment, error) {
	repo := s.payments.paymentRepo
	if ev.CheckoutID != "" {
		p, err := repo.FindByCheckoutID(ctx, ev.CheckoutID)
		if err == nil || !errors.Is(err, payment.ErrPaymentNotFound) || ev.ProviderPaymentID == "" {
			return p, err
		}
	}
	if ev.ProviderPaymentID != "" {
		return repo.FindByProviderPaymentID(ctx, ev.ProviderPaymentID)
	}
	return nil, payment.ErrPaymentNotFound
}

// advances reports whether a provider-pushed status may replace the current
// one. Webhooks arrive out of order, so only PENDING to PAID or FAILED and
// FAILED to PAID are accepted.
func advances(from, to payment.Status) bool {
	switch from {
	case payment.StatusPending:
		return to == payment.StatusPaid || to == payment.StatusFailed
	case payment.StatusFailed:
		return to == payment.StatusPaid
	default:
		return false
	}
}

// targetStatus maps an event onto the payment status it implies
func targetStatus(ev ProviderEvent) (payment.Status, bool) {
	switch ev.Type {
	case EventCheckoutUpdated:
		return payment.MapCheckoutStatus(ev.CheckoutStatus)
	case EventOrderPaid:
		return payment.StatusPaid, true
	case EventOrderCreated, EventOrderUpdated:
		return payment.MapOrderStatus(ev.OrderStatus)
	default:
		return "", false
	}
}
