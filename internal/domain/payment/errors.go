package payment

import "github.com/storefront/backend/internal/domain/shared"

// Lookup errors
var (
	ErrPaymentNotFound = shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	ErrOrderNotFound   = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
)

// Validation errors
var (
	ErrInvalidAmount       = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	ErrInvalidCurrency     = shared.NewDomainError("INVALID_CURRENCY", "Currency must be one of MKD, USD, EUR")
	ErrInvalidMethod       = shared.NewDomainError("INVALID_METHOD", "Unsupported payment method")
	ErrInvalidStatus       = shared.NewDomainError("INVALID_STATUS", "Unknown payment status")
	ErrRefundAmountInvalid = shared.NewDomainError("INVALID_REFUND_AMOUNT", "Refund amount must be greater than zero")
	ErrRefundExceedsAmount = shared.NewDomainError("REFUND_EXCEEDS_AMOUNT", "Refund amount cannot exceed the payment amount")
	ErrConfirmerRequired   = shared.NewDomainError("CONFIRMED_BY_REQUIRED", "Confirming admin identity is required")
	ErrDeleteNotAllowed    = shared.NewDomainError("PAYMENT_DELETE_FORBIDDEN", "Payments cannot be deleted; they are kept as an audit trail")
	ErrEmptyUpdate         = shared.NewDomainError("EMPTY_UPDATE", "No updatable fields supplied")
)

// Sync errors
var (
	ErrSyncNotApplicable      = shared.NewDomainError("SYNC_NOT_APPLICABLE", "Only CARD payments processed by polar can be synced")
	ErrSyncMissingIdentifiers = shared.NewDomainError("SYNC_MISSING_IDENTIFIERS", "Payment has no checkout id or provider payment id to sync with")
	ErrSyncInProgress         = shared.NewDomainError("SYNC_IN_PROGRESS", "A sync for this payment is already running")
	ErrProviderUnauthorized   = shared.NewDomainError("PROVIDER_UNAUTHORIZED", "Payment provider rejected our credentials")
	ErrProviderNotFound       = shared.NewDomainError("PROVIDER_NOT_FOUND", "Payment provider has no record of this checkout")
	ErrProviderUnavailable    = shared.NewDomainError("PROVIDER_UNAVAILABLE", "Payment provider is unavailable")
)

// Persistence failures. The underlying cause is logged, never returned.
var (
	ErrCreatePaymentFailed = shared.NewDomainError("PAYMENT_CREATE_FAILED", "Failed to create payment")
	ErrUpdatePaymentFailed = shared.NewDomainError("PAYMENT_UPDATE_FAILED", "Failed to update payment")
	ErrRefundFailed        = shared.NewDomainError("PAYMENT_REFUND_FAILED", "Failed to process refund")
	ErrConfirmCashFailed   = shared.NewDomainError("PAYMENT_CONFIRM_FAILED", "Failed to confirm cash payment")
	ErrLookupFailed        = shared.NewDomainError("PAYMENT_LOOKUP_FAILED", "Failed to load payments")
	ErrRecalculateFailed   = shared.NewDomainError("ORDER_RECALCULATE_FAILED", "Failed to recalculate order payment status")
)
