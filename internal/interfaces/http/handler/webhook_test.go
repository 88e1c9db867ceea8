package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/polar"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "polar-test-secret"

type MockProviderEventProcessor struct {
	mock.Mock
}

func (m *MockProviderEventProcessor) HandleProviderEvent(ctx context.Context, ev apppayment.ProviderEvent) (apppayment.WebhookOutcome, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(apppayment.WebhookOutcome), args.Error(1)
}

type recordingWebhookRecorder struct {
	outcomes []string
}

func (r *recordingWebhookRecorder) RecordWebhook(_ context.Context, outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func setupWebhookRouter(t *testing.T, processor *MockProviderEventProcessor, recorder WebhookRecorder) (*gin.Engine, *polar.WebhookVerifier) {
	t.Helper()
	verifier, err := polar.NewWebhookVerifier(testWebhookSecret)
	require.NoError(t, err)

	h := NewPolarWebhookHandler(verifier, processor, recorder)
	r := gin.New()
	r.POST("/webhooks/polar", h.Handle)
	return r, verifier
}

func signedDelivery(verifier *polar.WebhookVerifier, id, body string) *http.Request {
	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/polar", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(polar.HeaderWebhookID, id)
	req.Header.Set(polar.HeaderWebhookTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(polar.HeaderWebhookSignature, verifier.Sign(id, now, []byte(body)))
	return req
}

func TestPolarWebhookHandler_Applied(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	recorder := &recordingWebhookRecorder{}
	r, verifier := setupWebhookRouter(t, processor, recorder)

	body := `{"type":"checkout.updated","data":{"id":"chk_1","status":"succeeded","payment_id":"pay_1"}}`
	processor.On("HandleProviderEvent", mock.Anything, apppayment.ProviderEvent{
		DeliveryID:        "msg_1",
		Type:              "checkout.updated",
		CheckoutID:        "chk_1",
		CheckoutStatus:    "succeeded",
		ProviderPaymentID: "pay_1",
	}).Return(apppayment.WebhookApplied, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedDelivery(verifier, "msg_1", body))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["received"])
	assert.Equal(t, "applied", data["outcome"])
	assert.Equal(t, []string{"applied"}, recorder.outcomes)
	processor.AssertExpectations(t)
}

func TestPolarWebhookHandler_InvalidSignature(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	recorder := &recordingWebhookRecorder{}
	r, verifier := setupWebhookRouter(t, processor, recorder)

	req := signedDelivery(verifier, "msg_2", `{"type":"order.paid","data":{"id":"ord_1"}}`)
	req.Header.Set(polar.HeaderWebhookSignature, "v1,bm90LXRoZS1zaWduYXR1cmU=")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeWebhookSignature, decodeResponse(t, w).Error.Code)
	assert.Equal(t, []string{webhookOutcomeRejected}, recorder.outcomes)
	processor.AssertNotCalled(t, "HandleProviderEvent", mock.Anything, mock.Anything)
}

func TestPolarWebhookHandler_MissingHeaders(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	r, _ := setupWebhookRouter(t, processor, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/polar", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPolarWebhookHandler_MalformedPayload(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	recorder := &recordingWebhookRecorder{}
	r, verifier := setupWebhookRouter(t, processor, recorder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedDelivery(verifier, "msg_3", `{"data":{}}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeWebhookPayload, decodeResponse(t, w).Error.Code)
	assert.Equal(t, []string{webhookOutcomeMalformed}, recorder.outcomes)
}

func TestPolarWebhookHandler_TooLarge(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	r, verifier := setupWebhookRouter(t, processor, nil)

	body := `{"type":"order.paid","pad":"` + strings.Repeat("x", maxWebhookPayloadSize) + `"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedDelivery(verifier, "msg_4", body))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPolarWebhookHandler_ProcessingFailureIsNotAcknowledged(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	recorder := &recordingWebhookRecorder{}
	r, verifier := setupWebhookRouter(t, processor, recorder)

	processor.On("HandleProviderEvent", mock.Anything, mock.Anything).
		Return(apppayment.WebhookOutcome(""), payment.ErrUpdatePaymentFailed)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedDelivery(verifier, "msg_5", `{"type":"order.paid","data":{"id":"ord_9","checkout_id":"chk_9"}}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{webhookOutcomeFailed}, recorder.outcomes)
}

func TestPolarWebhookHandler_DuplicateAcknowledged(t *testing.T) {
	processor := new(MockProviderEventProcessor)
	r, verifier := setupWebhookRouter(t, processor, nil)

	processor.On("HandleProviderEvent", mock.Anything, mock.Anything).Return(apppayment.WebhookDuplicate, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedDelivery(verifier, "msg_6", `{"type":"order.paid","data":{"id":"ord_1"}}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", decodeResponse(t, w).Data.(map[string]any)["outcome"])
}
