package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stats summarises the payment attempts of one order. It is computed on read.
type Stats struct {
	OrderID         uuid.UUID       `json:"order_id"`
	TotalAttempts   int             `json:"total_attempts"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalRefunded   decimal.Decimal `json:"total_refunded"`
	FailedAttempts  int             `json:"failed_attempts"`
	PendingAttempts int             `json:"pending_attempts"`
	MethodBreakdown map[Method]int  `json:"method_breakdown"`
	LastAttemptAt   *time.Time      `json:"last_attempt_at,omitempty"`
}

// ComputeStats aggregates counts and totals over payments. Refund totals use
// the recorded refunded amount when present.
func ComputeStats(orderID uuid.UUID, payments []*Payment) Stats {
	s := Stats{
		OrderID:         orderID,
		TotalPaid:       decimal.Zero,
		TotalRefunded:   decimal.Zero,
		MethodBreakdown: make(map[Method]int),
	}
	for _, p := range payments {
		if p == nil {
			continue
		}
		s.TotalAttempts++
		s.MethodBreakdown[p.Method]++
		switch {
		case p.Status.CountsAsPaid():
			s.TotalPaid = s.TotalPaid.Add(p.Amount)
		case p.Status == StatusRefunded:
			if p.RefundedAmount != nil {
				s.TotalRefunded = s.TotalRefunded.Add(*p.RefundedAmount)
			} else {
				s.TotalRefunded = s.TotalRefunded.Add(p.Amount)
			}
		case p.Status == StatusFailed:
			s.FailedAttempts++
		case p.Status.IsAwaiting():
			s.PendingAttempts++
		}
		if s.LastAttemptAt == nil || p.CreatedAt.After(*s.LastAttemptAt) {
			created := p.CreatedAt
			s.LastAttemptAt = &created
		}
	}
	return s
}
