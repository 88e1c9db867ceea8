package polar

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webhookNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T) *WebhookVerifier {
	t.Helper()
	secret := secretPrefix + base64.StdEncoding.EncodeToString([]byte("super-secret-key"))
	v, err := NewWebhookVerifier(secret)
	require.NoError(t, err)
	v.now = func() time.Time { return webhookNow }
	return v
}

func signedHeader(v *WebhookVerifier, id string, at time.Time, body []byte) http.Header {
	h := http.Header{}
	h.Set(HeaderWebhookID, id)
	h.Set(HeaderWebhookTimestamp, strconv.FormatInt(at.Unix(), 10))
	h.Set(HeaderWebhookSignature, v.Sign(id, at, body))
	return h
}

func TestNewWebhookVerifier(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := NewWebhookVerifier("  ")
		assert.ErrorIs(t, err, ErrMissingWebhookSecret)
	})

	t.Run("invalid base64 after prefix", func(t *testing.T) {
		_, err := NewWebhookVerifier("whsec_***")
		assert.Error(t, err)
	})

	t.Run("raw secret is used as key", func(t *testing.T) {
		v, err := NewWebhookVerifier("plain-secret")
		require.NoError(t, err)
		assert.Equal(t, []byte("plain-secret"), v.key)
	})
}

func TestWebhookVerifier_Verify(t *testing.T) {
	body := []byte(`{"type":"checkout.updated","data":{"id":"chk_1","status":"confirmed"}}`)

	t.Run("valid signature", func(t *testing.T) {
		v := newTestVerifier(t)
		assert.NoError(t, v.Verify(signedHeader(v, "msg_1", webhookNow, body), body))
	})

	t.Run("accepts any matching signature in the list", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow, body)
		h.Set(HeaderWebhookSignature, "v1,Zm9vYmFy v2,ignored "+h.Get(HeaderWebhookSignature))
		assert.NoError(t, v.Verify(h, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow, body)
		assert.ErrorIs(t, v.Verify(h, []byte(`{"type":"checkout.updated"}`)), ErrInvalidSignature)
	})

	t.Run("different delivery id", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow, body)
		h.Set(HeaderWebhookID, "msg_2")
		assert.ErrorIs(t, v.Verify(h, body), ErrInvalidSignature)
	})

	t.Run("missing headers", func(t *testing.T) {
		v := newTestVerifier(t)
		assert.ErrorIs(t, v.Verify(http.Header{}, body), ErrMissingHeaders)
	})

	t.Run("non numeric timestamp", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow, body)
		h.Set(HeaderWebhookTimestamp, "yesterday")
		assert.ErrorIs(t, v.Verify(h, body), ErrInvalidTimestamp)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow.Add(-6*time.Minute), body)
		assert.ErrorIs(t, v.Verify(h, body), ErrTimestampOutOfRange)
	})

	t.Run("future timestamp", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow.Add(6*time.Minute), body)
		assert.ErrorIs(t, v.Verify(h, body), ErrTimestampOutOfRange)
	})

	t.Run("within tolerance", func(t *testing.T) {
		v := newTestVerifier(t)
		h := signedHeader(v, "msg_1", webhookNow.Add(-4*time.Minute), body)
		assert.NoError(t, v.Verify(h, body))
	})
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want apppayment.ProviderEvent
	}{
		{
			name: "checkout event",
			body: `{"type":"checkout.updated","data":{"id":"chk_1","status":"confirmed","payment_id":"pay_1"}}`,
			want: apppayment.ProviderEvent{
				DeliveryID:        "msg_1",
				Type:              "checkout.updated",
				CheckoutID:        "chk_1",
				CheckoutStatus:    "confirmed",
				ProviderPaymentID: "pay_1",
			},
		},
		{
			name: "order event",
			body: `{"type":"order.paid","data":{"id":"ord_1","status":"paid","checkout_id":"chk_1"}}`,
			want: apppayment.ProviderEvent{
				DeliveryID:      "msg_1",
				Type:            "order.paid",
				ProviderOrderID: "ord_1",
				OrderStatus:     "paid",
				CheckoutID:      "chk_1",
			},
		},
		{
			name: "other event keeps only the type",
			body: `{"type":"subscription.created","data":{"id":"sub_1","status":"active"}}`,
			want: apppayment.ProviderEvent{DeliveryID: "msg_1", Type: "subscription.created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent("msg_1", []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestParseEvent_Malformed(t *testing.T) {
	_, err := ParseEvent("msg_1", []byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseEvent("msg_1", []byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
