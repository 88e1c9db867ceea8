package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one attempt to collect money for an order. An order may carry
// several: a failed card charge, a cash fallback, a refund trail. Payments
// are never deleted.
type Payment struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Currency Currency
	Method   Method
	Status   Status
	Provider string

	CheckoutID        string
	ProviderPaymentID string
	ProviderOrderID   string

	// Captured at payment time so receipts survive account changes
	CustomerName  string
	CustomerEmail string

	// Cash on delivery only
	DeliveryAddress string
	DeliveryNotes   string

	RefundedAmount *decimal.Decimal
	RefundedAt     *time.Time
	RefundReason   string

	ConfirmedAt *time.Time
	ConfirmedBy string

	FailureReason string
	Metadata      Metadata

	CreatedAt time.Time
	UpdatedAt time.Time

	// Order is populated by lookups that join the owning order
	Order *Order
}

// NewPaymentParams are the inputs of NewPayment
type NewPaymentParams struct {
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	Currency          Currency
	Method            Method
	Provider          string
	CheckoutID        string
	ProviderPaymentID string
	ProviderOrderID   string
	CustomerName      string
	CustomerEmail     string
	DeliveryAddress   string
	DeliveryNotes     string
}

// NewPayment validates params and builds a payment in its initial status.
// The provider defaults from the method unless supplied.
func NewPayment(params NewPaymentParams) (*Payment, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !params.Currency.IsValid() {
		return nil, ErrInvalidCurrency
	}
	if !params.Method.IsValid() {
		return nil, ErrInvalidMethod
	}
	provider := strings.TrimSpace(params.Provider)
	if provider == "" {
		provider = params.Method.DefaultProvider()
	}

	now := time.Now()
	p := &Payment{
		ID:                uuid.New(),
		OrderID:           params.OrderID,
		Amount:            params.Amount,
		Currency:          params.Currency,
		Method:            params.Method,
		Status:            params.Method.InitialStatus(),
		Provider:          provider,
		CheckoutID:        params.CheckoutID,
		ProviderPaymentID: params.ProviderPaymentID,
		ProviderOrderID:   params.ProviderOrderID,
		CustomerName:      params.CustomerName,
		CustomerEmail:     params.CustomerEmail,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if params.Method == MethodCashOnDelivery {
		p.DeliveryAddress = params.DeliveryAddress
		p.DeliveryNotes = params.DeliveryNotes
	}
	return p, nil
}

// Patch lists the fields UpdateStatus may change. Nil means untouched.
type Patch struct {
	Status            *Status
	CheckoutID        *string
	ProviderPaymentID *string
	ProviderOrderID   *string
	ConfirmedAt       *time.Time
	ConfirmedBy       *string
	FailureReason     *string
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.CheckoutID == nil && p.ProviderPaymentID == nil &&
		p.ProviderOrderID == nil && p.ConfirmedAt == nil && p.ConfirmedBy == nil && p.FailureReason == nil
}

// TouchesStatus reports whether the patch sets a status
func (p Patch) TouchesStatus() bool {
	return p.Status != nil
}

// Apply writes the patch onto the payment. Any known status is accepted, the
// lifecycle is descriptive rather than enforced.
func (p *Payment) Apply(patch Patch) error {
	if patch.IsEmpty() {
		return ErrEmptyUpdate
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return ErrInvalidStatus
		}
		p.Status = *patch.Status
	}
	if patch.CheckoutID != nil {
		p.CheckoutID = *patch.CheckoutID
	}
	if patch.ProviderPaymentID != nil {
		p.ProviderPaymentID = *patch.ProviderPaymentID
	}
	if patch.ProviderOrderID != nil {
		p.ProviderOrderID = *patch.ProviderOrderID
	}
	if patch.ConfirmedAt != nil {
		at := *patch.ConfirmedAt
		p.ConfirmedAt = &at
	}
	if patch.ConfirmedBy != nil {
		p.ConfirmedBy = *patch.ConfirmedBy
	}
	if patch.FailureReason != nil {
		p.FailureReason = *patch.FailureReason
	}
	p.UpdatedAt = time.Now()
	return nil
}

// Refund marks the payment REFUNDED. A partial amount still moves the whole
// payment to REFUNDED; there is no partially refunded state.
func (p *Payment) Refund(amount decimal.Decimal, reason, refundedBy string, at time.Time) error {
	if !amount.IsPositive() {
		return ErrRefundAmountInvalid
	}
	if amount.GreaterThan(p.Amount) {
		return ErrRefundExceedsAmount
	}
	previous := p.Status
	p.Status = StatusRefunded
	p.RefundedAmount = &amount
	p.RefundedAt = &at
	p.RefundReason = reason
	p.Metadata.Refunds = append(p.Metadata.Refunds, RefundEntry{
		Amount:         amount,
		Reason:         reason,
		RefundedBy:     refundedBy,
		RefundedAt:     at,
		PreviousStatus: previous,
	})
	p.UpdatedAt = at
	return nil
}

// ConfirmCash records that cash was handed over at delivery
func (p *Payment) ConfirmCash(confirmedBy, notes string, at time.Time) error {
	if strings.TrimSpace(confirmedBy) == "" {
		return ErrConfirmerRequired
	}
	previous := p.Status
	p.Status = StatusCashReceived
	p.ConfirmedAt = &at
	p.ConfirmedBy = confirmedBy
	p.Metadata.CashConfirmation = &CashConfirmationEntry{
		ConfirmedBy:    confirmedBy,
		ConfirmedAt:    at,
		Notes:          notes,
		PreviousStatus: previous,
	}
	p.UpdatedAt = at
	return nil
}

// IsSyncable reports whether the payment can be reconciled with polar
func (p *Payment) IsSyncable() bool {
	return p.Method == MethodCard && p.Provider == ProviderPolar
}

// HasRemoteIdentifiers reports whether there is anything to look up remotely
func (p *Payment) HasRemoteIdentifiers() bool {
	return p.CheckoutID != "" || p.ProviderPaymentID != ""
}
