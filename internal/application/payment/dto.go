package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
)

// CreatePaymentInput starts a payment attempt for an order. Currency defaults
// to the order's currency when empty.
type CreatePaymentInput struct {
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	Currency          payment.Currency
	Method            payment.Method
	Provider          string
	CheckoutID        string
	ProviderPaymentID string
	ProviderOrderID   string
	CustomerName      string
	CustomerEmail     string
	DeliveryAddress   string
	DeliveryNotes     string
}

// UpdatePaymentInput patches a payment. Nil fields are left untouched.
type UpdatePaymentInput struct {
	Status            *payment.Status
	CheckoutID        *string
	ProviderPaymentID *string
	ProviderOrderID   *string
	ConfirmedAt       *time.Time
	ConfirmedBy       *string
	FailureReason     *string
}

func (in UpdatePaymentInput) patch() payment.Patch {
	return payment.Patch{
		Status:            in.Status,
		CheckoutID:        in.CheckoutID,
		ProviderPaymentID: in.ProviderPaymentID,
		ProviderOrderID:   in.ProviderOrderID,
		ConfirmedAt:       in.ConfirmedAt,
		ConfirmedBy:       in.ConfirmedBy,
		FailureReason:     in.FailureReason,
	}
}

// RefundInput describes an admin refund
type RefundInput struct {
	Amount     decimal.Decimal
	Reason     string
	RefundedBy string
}

// PaymentResponse is a payment joined with its order
type PaymentResponse struct {
	ID                uuid.UUID        `json:"id"`
	OrderID           uuid.UUID        `json:"order_id"`
	Amount            decimal.Decimal  `json:"amount"`
	Currency          string           `json:"currency"`
	Method            string           `json:"method"`
	Status            string           `json:"status"`
	Provider          string           `json:"provider"`
	CheckoutID        string           `json:"checkout_id,omitempty"`
	ProviderPaymentID string           `json:"provider_payment_id,omitempty"`
	ProviderOrderID   string           `json:"provider_order_id,omitempty"`
	CustomerName      string           `json:"customer_name,omitempty"`
	CustomerEmail     string           `json:"customer_email,omitempty"`
	DeliveryAddress   string           `json:"delivery_address,omitempty"`
	DeliveryNotes     string           `json:"delivery_notes,omitempty"`
	RefundedAmount    *decimal.Decimal `json:"refunded_amount,omitempty"`
	RefundedAt        *time.Time       `json:"refunded_at,omitempty"`
	RefundReason      string           `json:"refund_reason,omitempty"`
	ConfirmedAt       *time.Time       `json:"confirmed_at,omitempty"`
	ConfirmedBy       string           `json:"confirmed_by,omitempty"`
	FailureReason     string           `json:"failure_reason,omitempty"`
	Metadata          payment.Metadata `json:"metadata"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Order             *OrderResponse   `json:"order,omitempty"`
}

// OrderResponse is the order view embedded in payment responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// RecalculateResponse reports the outcome of re-running the aggregator
type RecalculateResponse struct {
	OrderID       uuid.UUID       `json:"order_id"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	Changed       bool            `json:"changed"`
}

// SyncOptions control a provider sync
type SyncOptions struct {
	ForceSync bool
	Actor     string
}

// SyncResult reports the outcome of a provider sync. Synced is false when the
// remote status could not be determined; Updated is true when a write happened.
type SyncResult struct {
	Synced         bool             `json:"synced"`
	Updated        bool             `json:"updated"`
	Forced         bool             `json:"forced"`
	PreviousStatus string           `json:"previous_status"`
	CurrentStatus  string           `json:"current_status"`
	RemoteStatus   string           `json:"remote_status,omitempty"`
	Message        string           `json:"message"`
	Payment        *PaymentResponse `json:"payment"`
}

// ToPaymentResponse converts a domain payment, including its order when loaded
func ToPaymentResponse(p *payment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	resp := &PaymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Amount:            p.Amount,
		Currency:          p.Currency.String(),
		Method:            p.Method.String(),
		Status:            p.Status.String(),
		Provider:          p.Provider,
		CheckoutID:        p.CheckoutID,
		ProviderPaymentID: p.ProviderPaymentID,
		ProviderOrderID:   p.ProviderOrderID,
		CustomerName:      p.CustomerName,
		CustomerEmail:     p.CustomerEmail,
		DeliveryAddress:   p.DeliveryAddress,
		DeliveryNotes:     p.DeliveryNotes,
		RefundedAmount:    p.RefundedAmount,
		RefundedAt:        p.RefundedAt,
		RefundReason:      p.RefundReason,
		ConfirmedAt:       p.ConfirmedAt,
		ConfirmedBy:       p.ConfirmedBy,
		FailureReason:     p.FailureReason,
		Metadata:          p.Metadata,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Order != nil {
		resp.Order = ToOrderResponse(p.Order)
	}
	return resp
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		if p != nil {
			out = append(out, *ToPaymentResponse(p))
		}
	}
	return out
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *payment.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return &OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Total:         o.Total,
		Currency:      o.Currency.String(),
		Status:        o.Status.String(),
		PaymentStatus: o.PaymentStatus.String(),
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
