package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/polar"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Maximum webhook payload size (64KB - polar deliveries are small)
const maxWebhookPayloadSize = 65536

// Webhook outcomes recorded for deliveries that never reach the service
const (
	webhookOutcomeRejected  = "rejected"
	webhookOutcomeMalformed = "malformed"
	webhookOutcomeFailed    = "failed"
)

// WebhookVerifier authenticates a raw provider delivery
type WebhookVerifier interface {
	Verify(header http.Header, body []byte) error
}

// ProviderEventProcessor applies a verified provider event
type ProviderEventProcessor interface {
	HandleProviderEvent(ctx context.Context, ev apppayment.ProviderEvent) (apppayment.WebhookOutcome, error)
}

// WebhookRecorder counts webhook deliveries by outcome
type WebhookRecorder interface {
	RecordWebhook(ctx context.Context, outcome string)
}

// PolarWebhookHandler receives polar webhook deliveries.
// The endpoint is public; every delivery is signature checked.
type PolarWebhookHandler struct {
	BaseHandler
	verifier  WebhookVerifier
	processor ProviderEventProcessor
	recorder  WebhookRecorder
}

// NewPolarWebhookHandler creates a new PolarWebhookHandler. recorder may be nil.
func NewPolarWebhookHandler(verifier WebhookVerifier, processor ProviderEventProcessor, recorder WebhookRecorder) *PolarWebhookHandler {
	return &PolarWebhookHandler{
		verifier:  verifier,
		processor: processor,
		recorder:  recorder,
	}
}

// Handle godoc
//
//	@ID				handlePolarWebhook
//	@Summary		Handle polar webhook
//	@Description	Receive checkout and order events from polar and apply the payment status they imply
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			webhook-id			header		string		true	"Delivery id"
//	@Param			webhook-timestamp	header		string		true	"Unix timestamp of the delivery"
//	@Param			webhook-signature	header		string		true	"Standard Webhooks signature"
//	@Success		200					{object}	APIResponse[WebhookAck]
//	@Failure		400					{object}	ErrorResponse	"Malformed payload"
//	@Failure		401					{object}	ErrorResponse	"Invalid signature"
//	@Failure		413					{object}	ErrorResponse	"Payload too large"
//	@Failure		500					{object}	ErrorResponse
//	@Router			/webhooks/polar [post]
func (h *PolarWebhookHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.L(ctx)

	// The raw body is needed for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.record(ctx, webhookOutcomeMalformed)
		h.Error(c, http.StatusBadRequest, dto.ErrCodeWebhookPayload, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.record(ctx, webhookOutcomeMalformed)
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Payload too large")
		return
	}

	if err := h.verifier.Verify(c.Request.Header, payload); err != nil {
		log.Warn("Webhook signature verification failed", zap.Error(err))
		h.record(ctx, webhookOutcomeRejected)
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeWebhookSignature, "Webhook signature verification failed")
		return
	}

	deliveryID := c.GetHeader(polar.HeaderWebhookID)
	ev, err := polar.ParseEvent(deliveryID, payload)
	if err != nil {
		log.Warn("Malformed webhook payload", zap.String("delivery_id", deliveryID), zap.Error(err))
		h.record(ctx, webhookOutcomeMalformed)
		h.Error(c, http.StatusBadRequest, dto.ErrCodeWebhookPayload, "Malformed webhook payload")
		return
	}

	// Processing errors are not acknowledged so the provider redelivers
	outcome, err := h.processor.HandleProviderEvent(ctx, ev)
	if err != nil {
		h.record(ctx, webhookOutcomeFailed)
		h.HandleError(c, err)
		return
	}

	h.record(ctx, string(outcome))
	h.Success(c, WebhookAck{Received: true, Outcome: string(outcome)})
}

func (h *PolarWebhookHandler) record(ctx context.Context, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordWebhook(ctx, outcome)
	}
}
