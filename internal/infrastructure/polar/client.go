// Package polar is the client for the polar.sh checkout API and its webhooks.
package polar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/storefront/backend/internal/domain/payment"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// Client implements payment.CheckoutProvider against the polar REST API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new polar client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.Named("polar"),
	}, nil
}

// GetCheckout fetches a checkout session
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*payment.RemoteCheckout, error) {
	var resp checkoutResponse
	if err := c.get(ctx, "/v1/checkouts/"+url.PathEscape(checkoutID), &resp); err != nil {
		return nil, err
	}
	return &payment.RemoteCheckout{
		ID:        resp.ID,
		Status:    resp.Status,
		PaymentID: resp.PaymentID,
	}, nil
}

// GetOrder fetches an order
func (c *Client) GetOrder(ctx context.Context, orderID string) (*payment.RemoteOrder, error) {
	var resp orderResponse
	if err := c.get(ctx, "/v1/orders/"+url.PathEscape(orderID), &resp); err != nil {
		return nil, err
	}
	return &payment.RemoteOrder{
		ID:         resp.ID,
		Status:     resp.Status,
		CheckoutID: resp.CheckoutID,
	}, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
// Every failure is a *payment.ProviderError.
func (c *Client) get(ctx context.Context, path string, out any) error {
	endpoint := c.config.Endpoint() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &payment.ProviderError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Polar request failed", zap.String("path", path), zap.Error(err))
		return &payment.ProviderError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &payment.ProviderError{Message: "failed to read response", Err: err}
	}

	c.logger.Debug("Polar response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &payment.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &payment.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response body",
			Err:        err,
		}
	}
	return nil
}

// errorMessage extracts a readable message from an error body
func errorMessage(status int, body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if detail, ok := parsed.Detail.(string); ok && detail != "" {
			return detail
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}

// Ensure Client implements payment.CheckoutProvider
var _ payment.CheckoutProvider = (*Client)(nil)
