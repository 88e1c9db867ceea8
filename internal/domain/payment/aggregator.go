package payment

import "github.com/shopspring/decimal"

// AggregateResult is the order-level status derived from all of an order's
// payments. OrderStatus is nil when fulfillment must be left untouched.
type AggregateResult struct {
	PaymentStatus Status
	OrderStatus   *OrderStatus
	TotalPaid     decimal.Decimal
	TotalRefunded decimal.Decimal
}

// Aggregate derives the order payment status. First match wins:
//
//  1. collected >= total       -> CASH_RECEIVED (DELIVERED) if any cash was received, else PAID (PROCESSING)
//  2. anything refunded        -> REFUNDED
//  3. any cash pending         -> CASH_PENDING (PROCESSING)
//  4. any failed               -> FAILED
//  5. otherwise                -> PENDING
//
// A fully paid order with a later refund therefore still reports PAID.
// Aggregate is pure; repeated calls with the same input agree.
func Aggregate(orderTotal decimal.Decimal, payments []*Payment) AggregateResult {
	var (
		totalPaid       = decimal.Zero
		totalRefunded   = decimal.Zero
		hasCashPending  bool
		hasFailed       bool
		hasCashReceived bool
	)
	for _, p := range payments {
		if p == nil {
			continue
		}
		switch p.Status {
		case StatusPaid:
			totalPaid = totalPaid.Add(p.Amount)
		case StatusCashReceived:
			totalPaid = totalPaid.Add(p.Amount)
			hasCashReceived = true
		case StatusRefunded:
			totalRefunded = totalRefunded.Add(p.Amount)
		case StatusCashPending:
			hasCashPending = true
		case StatusFailed:
			hasFailed = true
		}
	}

	res := AggregateResult{TotalPaid: totalPaid, TotalRefunded: totalRefunded}
	switch {
	case totalPaid.GreaterThanOrEqual(orderTotal):
		if hasCashReceived {
			res.PaymentStatus = StatusCashReceived
			res.OrderStatus = orderStatusPtr(OrderStatusDelivered)
		} else {
			res.PaymentStatus = StatusPaid
			res.OrderStatus = orderStatusPtr(OrderStatusProcessing)
		}
	case totalRefunded.IsPositive():
		res.PaymentStatus = StatusRefunded
	case hasCashPending:
		res.PaymentStatus = StatusCashPending
		res.OrderStatus = orderStatusPtr(OrderStatusProcessing)
	case hasFailed:
		res.PaymentStatus = StatusFailed
	default:
		res.PaymentStatus = StatusPending
	}
	return res
}

func orderStatusPtr(s OrderStatus) *OrderStatus {
	return &s
}
