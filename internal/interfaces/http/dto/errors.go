package dto

import "net/http"

// Error code constants for failures raised by the HTTP layer itself
// Format: ERR_<CATEGORY>_<DESCRIPTION>
//
// Domain errors keep their own codes (PAYMENT_NOT_FOUND, SYNC_IN_PROGRESS, ...)
// and are mapped through DomainCodeHTTPStatus.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidID is used when a path parameter is not a UUID
	ErrCodeInvalidID = "ERR_INVALID_ID"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Transport error codes
const (
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeWebhookSignature is returned when a provider delivery fails verification
	ErrCodeWebhookSignature = "ERR_WEBHOOK_SIGNATURE"
	ErrCodeWebhookPayload   = "ERR_WEBHOOK_PAYLOAD"
)

// ErrorCodeHTTPStatus maps HTTP-layer error codes to status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:          http.StatusInternalServerError,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidID:        http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeWebhookSignature: http.StatusUnauthorized,
	ErrCodeWebhookPayload:   http.StatusBadRequest,
}

// DomainCodeHTTPStatus maps shared.DomainError codes to status codes.
// Persistence failures ("*_FAILED") are absent and fall through to 500.
var DomainCodeHTTPStatus = map[string]int{
	// lookups
	"NOT_FOUND":          http.StatusNotFound,
	"PAYMENT_NOT_FOUND":  http.StatusNotFound,
	"ORDER_NOT_FOUND":    http.StatusNotFound,
	"PROVIDER_NOT_FOUND": http.StatusNotFound,

	// caller mistakes
	"INVALID_INPUT":            http.StatusBadRequest,
	"INVALID_ACTION":           http.StatusBadRequest,
	"INVALID_AMOUNT":           http.StatusBadRequest,
	"INVALID_CURRENCY":         http.StatusBadRequest,
	"INVALID_METHOD":           http.StatusBadRequest,
	"INVALID_STATUS":           http.StatusBadRequest,
	"INVALID_REFUND_AMOUNT":    http.StatusBadRequest,
	"REFUND_EXCEEDS_AMOUNT":    http.StatusBadRequest,
	"CONFIRMED_BY_REQUIRED":    http.StatusBadRequest,
	"EMPTY_UPDATE":             http.StatusBadRequest,
	"PAYMENT_DELETE_FORBIDDEN": http.StatusBadRequest,
	"SYNC_NOT_APPLICABLE":      http.StatusBadRequest,
	"SYNC_MISSING_IDENTIFIERS": http.StatusBadRequest,
	"INVALID_STATE":            http.StatusUnprocessableEntity,

	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	"CONFLICT":         http.StatusConflict,
	"SYNC_IN_PROGRESS": http.StatusConflict,

	// upstream provider
	"SERVICE_UNAVAILABLE":   http.StatusServiceUnavailable,
	"PROVIDER_UNAUTHORIZED": http.StatusServiceUnavailable,
	"PROVIDER_UNAVAILABLE":  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := DomainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
