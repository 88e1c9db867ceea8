package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdatePaymentRequest is the admin PUT body. Action selects the command; the
// other fields are read only by the command that needs them.
type UpdatePaymentRequest struct {
	Action            string           `json:"action" binding:"required,oneof=confirmCash processRefund updateStatus" example:"confirmCash"`
	Notes             string           `json:"notes,omitempty" binding:"max=1000"`
	Amount            *decimal.Decimal `json:"amount,omitempty" swaggertype:"string" example:"150.00"`
	Reason            string           `json:"reason,omitempty" binding:"max=500"`
	Status            string           `json:"status,omitempty" example:"PAID"`
	FailureReason     *string          `json:"failureReason,omitempty" binding:"omitempty,max=500"`
	CheckoutID        *string          `json:"checkoutId,omitempty" binding:"omitempty,max=255"`
	ProviderPaymentID *string          `json:"providerPaymentId,omitempty" binding:"omitempty,max=255"`
	ProviderOrderID   *string          `json:"providerOrderId,omitempty" binding:"omitempty,max=255"`
	ConfirmedAt       *time.Time       `json:"confirmedAt,omitempty" example:"2026-01-15T10:00:00Z"`
	ConfirmedBy       *string          `json:"confirmedBy,omitempty" binding:"omitempty,max=100"`
}

// SyncPaymentRequest is the optional body of the sync endpoint
type SyncPaymentRequest struct {
	ForceSync bool `json:"forceSync"`
}

// CreatePaymentRequest starts a payment attempt for an order
type CreatePaymentRequest struct {
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"1500.00"`
	Currency          string          `json:"currency,omitempty" binding:"omitempty,oneof=MKD USD EUR"`
	Method            string          `json:"method" binding:"required,oneof=CARD CASH_ON_DELIVERY BANK_TRANSFER DIGITAL_WALLET"`
	CheckoutID        string          `json:"checkoutId,omitempty" binding:"max=255"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty" binding:"max=255"`
	ProviderOrderID   string          `json:"providerOrderId,omitempty" binding:"max=255"`
	CustomerName      string          `json:"customerName,omitempty" binding:"max=255"`
	CustomerEmail     string          `json:"customerEmail,omitempty" binding:"omitempty,email,max=255"`
	DeliveryAddress   string          `json:"deliveryAddress,omitempty" binding:"max=1000"`
	DeliveryNotes     string          `json:"deliveryNotes,omitempty" binding:"max=1000"`
}

// ListPaymentsRequest filters the admin payment list
type ListPaymentsRequest struct {
	PageQuery
	Method string `form:"method" binding:"required,oneof=CARD CASH_ON_DELIVERY BANK_TRANSFER DIGITAL_WALLET"`
}
