package polar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apppayment "github.com/storefront/backend/internal/application/payment"
)

// Standard Webhooks headers sent with every delivery
const (
	HeaderWebhookID        = "webhook-id"
	HeaderWebhookTimestamp = "webhook-timestamp"
	HeaderWebhookSignature = "webhook-signature"
)

const (
	secretPrefix     = "whsec_"
	signatureVersion = "v1"
	defaultTolerance = 5 * time.Minute
)

// Webhook verification errors
var (
	ErrMissingWebhookSecret = errors.New("polar: missing webhook secret")
	ErrMissingHeaders       = errors.New("polar: missing webhook headers")
	ErrInvalidTimestamp     = errors.New("polar: invalid webhook timestamp")
	ErrTimestampOutOfRange  = errors.New("polar: webhook timestamp outside tolerance")
	ErrInvalidSignature     = errors.New("polar: webhook signature mismatch")
	ErrMalformedPayload     = errors.New("polar: malformed webhook payload")
)

// WebhookVerifier checks Standard Webhooks signatures on polar deliveries
type WebhookVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewWebhookVerifier creates a verifier for secret. A "whsec_" secret is
// base64 encoded; any other secret is used as raw key bytes.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}
	key := []byte(secret)
	if encoded, ok := strings.CutPrefix(secret, secretPrefix); ok {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("polar: webhook secret is not valid base64: %w", err)
		}
		key = decoded
	}
	return &WebhookVerifier{key: key, tolerance: defaultTolerance, now: time.Now}, nil
}

// Verify checks the delivery headers against body
func (v *WebhookVerifier) Verify(header http.Header, body []byte) error {
	id := header.Get(HeaderWebhookID)
	ts := header.Get(HeaderWebhookTimestamp)
	signatures := header.Get(HeaderWebhookSignature)
	if id == "" || ts == "" || signatures == "" {
		return ErrMissingHeaders
	}

	seconds, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	sent := time.Unix(seconds, 0)
	if delta := v.now().Sub(sent); delta > v.tolerance || delta < -v.tolerance {
		return ErrTimestampOutOfRange
	}

	expected := v.sign(id, ts, body)
	for _, candidate := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != signatureVersion {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign returns the header value polar would send for body. Used by tests and
// local tooling that replays deliveries.
func (v *WebhookVerifier) Sign(id string, at time.Time, body []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(v.sign(id, ts, body))
}

func (v *WebhookVerifier) sign(id, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

// webhookPayload is the envelope of every polar webhook
type webhookPayload struct {
	Type string      `json:"type"`
	Data webhookData `json:"data"`
}

type webhookData struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CheckoutID string `json:"checkout_id"`
	PaymentID  string `json:"payment_id"`
}

// ParseEvent decodes a verified delivery into a provider event
func ParseEvent(deliveryID string, body []byte) (apppayment.ProviderEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apppayment.ProviderEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Type == "" {
		return apppayment.ProviderEvent{}, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}

	ev := apppayment.ProviderEvent{
		DeliveryID: deliveryID,
		Type:       payload.Type,
	}
	switch {
	case strings.HasPrefix(payload.Type, "checkout."):
		ev.CheckoutID = payload.Data.ID
		ev.CheckoutStatus = payload.Data.Status
		ev.ProviderPaymentID = payload.Data.PaymentID
	case strings.HasPrefix(payload.Type, "order."):
		ev.ProviderOrderID = payload.Data.ID
		ev.OrderStatus = payload.Data.Status
		ev.CheckoutID = payload.Data.CheckoutID
	}
	return ev, nil
}
