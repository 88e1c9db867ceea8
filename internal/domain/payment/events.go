package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	AggregateTypePayment = "Payment"
	AggregateTypeOrder   = "Order"

	EventTypePaymentCreated            = "PaymentCreated"
	EventTypePaymentStatusChanged      = "PaymentStatusChanged"
	EventTypeOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
)

// PaymentCreatedEvent is published after a payment attempt is recorded
type PaymentCreatedEvent struct {
	shared.EventMeta
	OrderID  uuid.UUID       `json:"order_id"`
	Method   Method          `json:"method"`
	Status   Status          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewPaymentCreatedEvent builds the event for p
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		EventMeta: shared.NewEventMeta(EventTypePaymentCreated, AggregateTypePayment, p.ID),
		OrderID:   p.OrderID,
		Method:    p.Method,
		Status:    p.Status,
		Amount:    p.Amount,
		Currency:  p.Currency,
	}
}

// PaymentStatusChangedEvent is published after a payment's status changes.
// Source names the trigger: update, refund, cash_confirmation, sync, webhook.
type PaymentStatusChangedEvent struct {
	shared.EventMeta
	OrderID   uuid.UUID       `json:"order_id"`
	Method    Method          `json:"method"`
	OldStatus Status          `json:"old_status"`
	NewStatus Status          `json:"new_status"`
	Amount    decimal.Decimal `json:"amount"`
	Source    string          `json:"source"`
}

// NewPaymentStatusChangedEvent builds the event for p moving from old
func NewPaymentStatusChangedEvent(p *Payment, old Status, source string) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypePaymentStatusChanged, AggregateTypePayment, p.ID),
		OrderID:   p.OrderID,
		Method:    p.Method,
		OldStatus: old,
		NewStatus: p.Status,
		Amount:    p.Amount,
		Source:    source,
	}
}

// OrderPaymentStatusChangedEvent is published after the derived order status changes
type OrderPaymentStatusChangedEvent struct {
	shared.EventMeta
	OldPaymentStatus Status      `json:"old_payment_status"`
	NewPaymentStatus Status      `json:"new_payment_status"`
	OrderStatus      OrderStatus `json:"order_status"`
}

// NewOrderPaymentStatusChangedEvent builds the event for o
func NewOrderPaymentStatusChangedEvent(o *Order, old Status) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		EventMeta:        shared.NewEventMeta(EventTypeOrderPaymentStatusChanged, AggregateTypeOrder, o.ID),
		OldPaymentStatus: old,
		NewPaymentStatus: o.PaymentStatus,
		OrderStatus:      o.Status,
	}
}
