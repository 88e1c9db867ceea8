package handler

import "github.com/storefront/backend/internal/interfaces/http/dto"

// The types below only shape the generated OpenAPI document; handlers write
// dto.Response directly.

// APIResponse is the envelope with a typed data field
// @Description Envelope returned by every endpoint
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of a failed request
// @Description Failure envelope with code, message and request id
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// WebhookAck is the body returned to the checkout provider
// @Description Webhook delivery acknowledgement
type WebhookAck struct {
	Received bool   `json:"received" example:"true"`
	Outcome  string `json:"outcome" example:"applied"`
}
