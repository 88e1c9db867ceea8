package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the customer purchase a payment belongs to. This service reads its
// total and writes only PaymentStatus and Status.
type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Total         decimal.Decimal
	Currency      Currency
	Status        OrderStatus
	PaymentStatus Status
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is a line of an order
type OrderItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// ApplyAggregate writes an aggregation result onto the order. It reports
// whether anything changed.
func (o *Order) ApplyAggregate(res AggregateResult) bool {
	changed := o.PaymentStatus != res.PaymentStatus
	o.PaymentStatus = res.PaymentStatus
	if res.OrderStatus != nil && o.Status != *res.OrderStatus {
		o.Status = *res.OrderStatus
		changed = true
	}
	return changed
}

// MarkCashDelivered forces the order to DELIVERED / CASH_RECEIVED. Cash handed
// over at the door settles delivery and payment in one event.
func (o *Order) MarkCashDelivered() {
	o.Status = OrderStatusDelivered
	o.PaymentStatus = StatusCashReceived
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
