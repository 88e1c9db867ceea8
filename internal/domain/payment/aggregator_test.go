package payment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pay(method payment.Method, status payment.Status, amount int64) *payment.Payment {
	return &payment.Payment{Method: method, Status: status, Amount: decimal.NewFromInt(amount)}
}

func TestAggregate(t *testing.T) {
	total := decimal.NewFromInt(1000)
	processing := payment.OrderStatusProcessing
	delivered := payment.OrderStatusDelivered

	tests := []struct {
		name            string
		payments        []*payment.Payment
		wantStatus      payment.Status
		wantOrderStatus *payment.OrderStatus
	}{
		{
			name:       "no payments",
			wantStatus: payment.StatusPending,
		},
		{
			name:            "card paid in full",
			payments:        []*payment.Payment{pay(payment.MethodCard, payment.StatusPaid, 1000)},
			wantStatus:      payment.StatusPaid,
			wantOrderStatus: &processing,
		},
		{
			name:            "cash received in full",
			payments:        []*payment.Payment{pay(payment.MethodCashOnDelivery, payment.StatusCashReceived, 1000)},
			wantStatus:      payment.StatusCashReceived,
			wantOrderStatus: &delivered,
		},
		{
			name: "split across card and cash with cash received",
			payments: []*payment.Payment{
				pay(payment.MethodCard, payment.StatusPaid, 600),
				pay(payment.MethodCashOnDelivery, payment.StatusCashReceived, 400),
			},
			wantStatus:      payment.StatusCashReceived,
			wantOrderStatus: &delivered,
		},
		{
			name: "failed card then cash pending",
			payments: []*payment.Payment{
				pay(payment.MethodCard, payment.StatusFailed, 1000),
				pay(payment.MethodCashOnDelivery, payment.StatusCashPending, 1000),
			},
			wantStatus:      payment.StatusCashPending,
			wantOrderStatus: &processing,
		},
		{
			name: "paid then partial refund stays paid",
			payments: []*payment.Payment{
				pay(payment.MethodCard, payment.StatusPaid, 1000),
				pay(payment.MethodCard, payment.StatusRefunded, 400),
			},
			wantStatus:      payment.StatusPaid,
			wantOrderStatus: &processing,
		},
		{
			name:       "only refunded",
			payments:   []*payment.Payment{pay(payment.MethodCard, payment.StatusRefunded, 1000)},
			wantStatus: payment.StatusRefunded,
		},
		{
			name: "refund beats cash pending",
			payments: []*payment.Payment{
				pay(payment.MethodCard, payment.StatusRefunded, 200),
				pay(payment.MethodCashOnDelivery, payment.StatusCashPending, 1000),
			},
			wantStatus: payment.StatusRefunded,
		},
		{
			name:       "only failed",
			payments:   []*payment.Payment{pay(payment.MethodCard, payment.StatusFailed, 1000)},
			wantStatus: payment.StatusFailed,
		},
		{
			name: "partial payment is pending",
			payments: []*payment.Payment{
				pay(payment.MethodCard, payment.StatusPaid, 300),
				pay(payment.MethodCard, payment.StatusPending, 700),
			},
			wantStatus: payment.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := payment.Aggregate(total, tt.payments)
			assert.Equal(t, tt.wantStatus, res.PaymentStatus)
			if tt.wantOrderStatus == nil {
				assert.Nil(t, res.OrderStatus)
			} else {
				require.NotNil(t, res.OrderStatus)
				assert.Equal(t, *tt.wantOrderStatus, *res.OrderStatus)
			}
		})
	}
}

func TestAggregate_ZeroTotalOrder(t *testing.T) {
	res := payment.Aggregate(decimal.Zero, nil)

	assert.Equal(t, payment.StatusPaid, res.PaymentStatus)
	require.NotNil(t, res.OrderStatus)
	assert.Equal(t, payment.OrderStatusProcessing, *res.OrderStatus)
	assert.True(t, res.TotalPaid.IsZero())
}

func TestAggregate_Idempotent(t *testing.T) {
	payments := []*payment.Payment{
		pay(payment.MethodCard, payment.StatusFailed, 500),
		pay(payment.MethodCashOnDelivery, payment.StatusCashPending, 500),
		pay(payment.MethodCard, payment.StatusRefunded, 100),
	}
	first := payment.Aggregate(decimal.NewFromInt(500), payments)
	second := payment.Aggregate(decimal.NewFromInt(500), payments)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.True(t, first.TotalRefunded.Equal(second.TotalRefunded))
}

func TestAggregate_FullyPaidNeverReportsOtherStatuses(t *testing.T) {
	for _, other := range payment.AllStatuses() {
		payments := []*payment.Payment{
			pay(payment.MethodCard, payment.StatusPaid, 1000),
			pay(payment.MethodCard, other, 1000),
		}
		res := payment.Aggregate(decimal.NewFromInt(1000), payments)
		assert.Contains(t, []payment.Status{payment.StatusPaid, payment.StatusCashReceived}, res.PaymentStatus, "sibling %s", other)
	}
}

func TestOrder_ApplyAggregate(t *testing.T) {
	order := &payment.Order{Status: payment.OrderStatusPending, PaymentStatus: payment.StatusPending}

	changed := order.ApplyAggregate(payment.Aggregate(decimal.NewFromInt(100), []*payment.Payment{
		pay(payment.MethodCard, payment.StatusFailed, 100),
	}))
	assert.True(t, changed)
	assert.Equal(t, payment.StatusFailed, order.PaymentStatus)
	assert.Equal(t, payment.OrderStatusPending, order.Status, "failed leaves fulfillment untouched")

	changed = order.ApplyAggregate(payment.AggregateResult{PaymentStatus: payment.StatusFailed})
	assert.False(t, changed)

	order.MarkCashDelivered()
	assert.Equal(t, payment.OrderStatusDelivered, order.Status)
	assert.Equal(t, payment.StatusCashReceived, order.PaymentStatus)
}
