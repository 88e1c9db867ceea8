package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Event sources recorded on PaymentStatusChanged events
const (
	SourceUpdate           = "update"
	SourceRefund           = "refund"
	SourceCashConfirmation = "cash_confirmation"
	SourceSync             = "sync"
	SourceWebhook          = "webhook"
)

// PaymentService implements the payment lifecycle. Every payment write and
// the order status it implies are committed in one transaction.
type PaymentService struct {
	paymentRepo payment.PaymentRepository
	orderRepo   payment.OrderRepository
	txScope     TransactionScope
	events      shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// PaymentServiceConfig holds the dependencies of PaymentService
type PaymentServiceConfig struct {
	PaymentRepo    payment.PaymentRepository
	OrderRepo      payment.OrderRepository
	TxScope        TransactionScope
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewPaymentService creates a PaymentService. Without a TxScope the
// repositories are used directly.
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	scope := cfg.TxScope
	if scope == nil {
		scope = NewNoOpTransactionScope(cfg.PaymentRepo, cfg.OrderRepo)
	}
	return &PaymentService{
		paymentRepo: cfg.PaymentRepo,
		orderRepo:   cfg.OrderRepo,
		txScope:     scope,
		events:      cfg.EventPublisher,
		logger:      l.Named("payment_service"),
		now:         time.Now,
	}
}

// CreatePayment records a new payment attempt and recomputes the order status
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*PaymentResponse, error) {
	var (
		created *payment.Payment
		pending []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		currency := in.Currency
		if currency == "" {
			currency = order.Currency
		}
		p, err := payment.NewPayment(payment.NewPaymentParams{
			OrderID:           order.ID,
			Amount:            in.Amount,
			Currency:          currency,
			Method:            in.Method,
			Provider:          in.Provider,
			CheckoutID:        in.CheckoutID,
			ProviderPaymentID: in.ProviderPaymentID,
			ProviderOrderID:   in.ProviderOrderID,
			CustomerName:      in.CustomerName,
			CustomerEmail:     in.CustomerEmail,
			DeliveryAddress:   in.DeliveryAddress,
			DeliveryNotes:     in.DeliveryNotes,
		})
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return err
		}
		pending = append(pending, payment.NewPaymentCreatedEvent(p))

		ev, err := s.recalculate(ctx, repos, order)
		if err != nil {
			return err
		}
		if ev != nil {
			pending = append(pending, ev)
		}
		p.Order = order
		created = p
		return nil
	})
	if err != nil {
		return nil, s.failure(ctx, err, payment.ErrCreatePaymentFailed, "Failed to create payment",
			zap.String("order_id", in.OrderID.String()))
	}

	s.log(ctx).Info("Payment created",
		zap.String("payment_id", created.ID.String()),
		zap.String("order_id", created.OrderID.String()),
		zap.String("method", created.Method.String()),
		zap.String("status", created.Status.String()))
	s.publish(ctx, pending...)
	return ToPaymentResponse(created), nil
}

// UpdatePaymentStatus patches a payment. The order status is recomputed only
// when the patch sets a status.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, in UpdatePaymentInput) (*PaymentResponse, error) {
	patch := in.patch()
	p, err := s.mutate(ctx, id, mutation{
		source:    SourceUpdate,
		aggregate: patch.TouchesStatus(),
		apply:     func(p *payment.Payment) error { return p.Apply(patch) },
	})
	if err != nil {
		return nil, s.failure(ctx, err, payment.ErrUpdatePaymentFailed, "Failed to update payment",
			zap.String("payment_id", id.String()))
	}
	return ToPaymentResponse(p), nil
}

// HandleRefund marks a payment REFUNDED and recomputes the order status.
// The refund may not exceed the payment amount.
func (s *PaymentService) HandleRefund(ctx context.Context, id uuid.UUID, in RefundInput) (*PaymentResponse, error) {
	at := s.now()
	p, err := s.mutate(ctx, id, mutation{
		source:    SourceRefund,
		aggregate: true,
		apply: func(p *payment.Payment) error {
			return p.Refund(in.Amount, in.Reason, in.RefundedBy, at)
		},
	})
	if err != nil {
		return nil, s.failure(ctx, err, payment.ErrRefundFailed, "Failed to process refund",
			zap.String("payment_id", id.String()))
	}
	s.log(ctx).Info("Payment refunded",
		zap.String("payment_id", p.ID.String()),
		zap.String("amount", in.Amount.String()))
	return ToPaymentResponse(p), nil
}

// ConfirmCashReceived records collected cash and forces the order to
// DELIVERED / CASH_RECEIVED without running the aggregator.
func (s *PaymentService) ConfirmCashReceived(ctx context.Context, id uuid.UUID, confirmedBy, notes string) (*PaymentResponse, error) {
	at := s.now()
	p, err := s.mutate(ctx, id, mutation{
		source:     SourceCashConfirmation,
		forceOrder: func(o *payment.Order) { o.MarkCashDelivered() },
		apply:      func(p *payment.Payment) error { return p.ConfirmCash(confirmedBy, notes, at) },
	})
	if err != nil {
		return nil, s.failure(ctx, err, payment.ErrConfirmCashFailed, "Failed to confirm cash payment",
			zap.String("payment_id", id.String()))
	}
	s.log(ctx).Info("Cash payment confirmed",
		zap.String("payment_id", p.ID.String()),
		zap.String("confirmed_by", confirmedBy))
	return ToPaymentResponse(p), nil
}

// DeletePayment never deletes: payments are an audit trail. The attempt is
// logged and rejected without touching the record.
func (s *PaymentService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	s.log(ctx).Warn("Payment deletion refused", zap.String("payment_id", id.String()))
	return payment.ErrDeleteNotAllowed
}

// RecalculateOrderStatus re-runs the aggregator for an order
func (s *PaymentService) RecalculateOrderStatus(ctx context.Context, orderID uuid.UUID) (*RecalculateResponse, error) {
	var (
		resp *RecalculateResponse
		ev   shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		payments, err := repos.PaymentRepo().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		res := payment.Aggregate(order.Total, payments)
		old := order.PaymentStatus
		changed := order.ApplyAggregate(res)
		if changed {
			if err := repos.OrderRepo().UpdateStatuses(ctx, order); err != nil {
				return err
			}
			ev = payment.NewOrderPaymentStatusChangedEvent(order, old)
		}
		resp = &RecalculateResponse{
			OrderID:       order.ID,
			PaymentStatus: order.PaymentStatus.String(),
			OrderStatus:   order.Status.String(),
			TotalPaid:     res.TotalPaid,
			TotalRefunded: res.TotalRefunded,
			Changed:       changed,
		}
		return nil
	})
	if err != nil {
		return nil, s.failure(ctx, err, payment.ErrRecalculateFailed, "Failed to recalculate order status",
			zap.String("order_id", orderID.String()))
	}
	if ev != nil {
		s.publish(ctx, ev)
	}
	return resp, nil
}

// mutation describes one payment write. Exactly one of aggregate or
// forceOrder decides what happens to the owning order; with neither the
// order is only loaded for the response.
type mutation struct {
	source     string
	apply      func(p *payment.Payment) error
	aggregate  bool
	forceOrder func(o *payment.Order)
}

func (s *PaymentService) mutate(ctx context.Context, id uuid.UUID, m mutation) (*payment.Payment, error) {
	var (
		result  *payment.Payment
		pending []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		var order *payment.Order
		if m.aggregate || m.forceOrder != nil {
			order, err = repos.OrderRepo().FindByIDForUpdate(ctx, p.OrderID)
		} else {
			order, err = repos.OrderRepo().FindByID(ctx, p.OrderID)
		}
		if err != nil {
			return err
		}

		old := p.Status
		if err := m.apply(p); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}
		if p.Status != old {
			pending = append(pending, payment.NewPaymentStatusChangedEvent(p, old, m.source))
		}

		switch {
		case m.forceOrder != nil:
			oldOrderStatus := order.PaymentStatus
			m.forceOrder(order)
			if err := repos.OrderRepo().UpdateStatuses(ctx, order); err != nil {
				return err
			}
			if order.PaymentStatus != oldOrderStatus {
				pending = append(pending, payment.NewOrderPaymentStatusChangedEvent(order, oldOrderStatus))
			}
		case m.aggregate:
			ev, err := s.recalculate(ctx, repos, order)
			if err != nil {
				return err
			}
			if ev != nil {
				pending = append(pending, ev)
			}
		}

		p.Order = order
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, pending...)
	return result, nil
}

// recalculate runs the aggregator for an already locked order and persists
// the result when it changed.
func (s *PaymentService) recalculate(ctx context.Context, repos TransactionalRepositories, order *payment.Order) (shared.DomainEvent, error) {
	payments, err := repos.PaymentRepo().FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	old := order.PaymentStatus
	if !order.ApplyAggregate(payment.Aggregate(order.Total, payments)) {
		return nil, nil
	}
	if err := repos.OrderRepo().UpdateStatuses(ctx, order); err != nil {
		return nil, err
	}
	if order.PaymentStatus == old {
		return nil, nil
	}
	return payment.NewOrderPaymentStatusChangedEvent(order, old), nil
}

// failure passes domain errors through and replaces anything else with the
// generic operation error after logging the cause.
func (s *PaymentService) failure(ctx context.Context, err error, generic *shared.DomainError, msg string, fields ...zap.Field) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.log(ctx).Error(msg, append(fields, zap.Error(err))...)
	return generic
}

func (s *PaymentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.log(ctx).Warn("Failed to publish payment events", zap.Error(err))
	}
}

func (s *PaymentService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}
