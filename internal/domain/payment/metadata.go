package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metadata is the typed audit trail of a payment. Each kind of entry has its
// own shape.
type Metadata struct {
	Refunds          []RefundEntry          `json:"refunds,omitempty"`
	CashConfirmation *CashConfirmationEntry `json:"cashConfirmation,omitempty"`
	Syncs            []SyncEntry            `json:"syncs,omitempty"`
	Webhooks         []WebhookEntry         `json:"webhooks,omitempty"`
}

// RefundEntry records one refund
type RefundEntry struct {
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason,omitempty"`
	RefundedBy     string          `json:"refundedBy,omitempty"`
	RefundedAt     time.Time       `json:"refundedAt"`
	PreviousStatus Status          `json:"previousStatus"`
}

// CashConfirmationEntry records a manual cash receipt confirmation
type CashConfirmationEntry struct {
	ConfirmedBy    string    `json:"confirmedBy"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
	Notes          string    `json:"notes,omitempty"`
	PreviousStatus Status    `json:"previousStatus"`
}

// SyncEntry records a status change caused by provider reconciliation
type SyncEntry struct {
	SyncedAt       time.Time `json:"syncedAt"`
	SyncedBy       string    `json:"syncedBy,omitempty"`
	Forced         bool      `json:"forced,omitempty"`
	RemoteStatus   string    `json:"remoteStatus,omitempty"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
}

// WebhookEntry records a status change pushed by a provider webhook
type WebhookEntry struct {
	DeliveryID     string    `json:"deliveryId"`
	EventType      string    `json:"eventType"`
	ReceivedAt     time.Time `json:"receivedAt"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
}
