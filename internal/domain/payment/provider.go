package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// RemoteCheckout is the provider's view of a checkout session
type RemoteCheckout struct {
	ID        string
	Status    string // open, expired, confirmed, ...
	PaymentID string
}

// RemoteOrder is the provider's view of an order
type RemoteOrder struct {
	ID         string
	Status     string
	CheckoutID string
}

// CheckoutProvider reads remote checkout state. Implementations return
// *ProviderError for failed calls.
type CheckoutProvider interface {
	GetCheckout(ctx context.Context, checkoutID string) (*RemoteCheckout, error)
	GetOrder(ctx context.Context, orderID string) (*RemoteOrder, error)
}

// ProviderError is a failed provider call. StatusCode is the remote HTTP
// status, or 0 when the provider could not be reached.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider unreachable: %s", e.Message)
	}
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsUnauthorized reports a credential rejection
func (e *ProviderError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound reports a missing remote object
func (e *ProviderError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// MapCheckoutStatus maps a remote checkout status onto a payment status.
// ok is false when the remote status is blank.
func MapCheckoutStatus(remote string) (status Status, ok bool) {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "":
		return "", false
	case "confirmed":
		return StatusPaid, true
	case "expired":
		return StatusFailed, true
	default:
		return StatusPending, true
	}
}

var (
	paidOrderMarkers   = []string{"confirmed", "paid", "complete"}
	failedOrderMarkers = []string{"canceled", "cancelled", "expired", "failed"}
)

// MapOrderStatus maps a free-form remote order status by substring match.
// ok is false when the remote status is blank.
func MapOrderStatus(remote string) (status Status, ok bool) {
	s := strings.ToLower(strings.TrimSpace(remote))
	if s == "" {
		return "", false
	}
	for _, m := range paidOrderMarkers {
		if strings.Contains(s, m) {
			return StatusPaid, true
		}
	}
	for _, m := range failedOrderMarkers {
		if strings.Contains(s, m) {
			return StatusFailed, true
		}
	}
	return StatusPending, true
}
