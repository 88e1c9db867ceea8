package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderPaymentHandler handles the customer-facing payment endpoints of an order.
// Callers see only their own orders unless they are admins.
type OrderPaymentHandler struct {
	BaseHandler
	payments PaymentUseCases
}

// NewOrderPaymentHandler creates a new OrderPaymentHandler
func NewOrderPaymentHandler(payments PaymentUseCases) *OrderPaymentHandler {
	return &OrderPaymentHandler{payments: payments}
}

// Create godoc
//
//	@ID				createOrderPayment
//	@Summary		Start a payment attempt
//	@Description	Record a new payment attempt for the caller's order. The order payment status is recomputed.
//	@Tags			order-payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Order ID"	format(uuid)
//	@Param			request	body		dto.CreatePaymentRequest	true	"Payment attempt"
//	@Success		201		{object}	APIResponse[apppayment.PaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/payments [post]
func (h *OrderPaymentHandler) Create(c *gin.Context) {
	orderID, ok := h.authorizeOrder(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	p, err := h.payments.CreatePayment(c.Request.Context(), apppayment.CreatePaymentInput{
		OrderID:           orderID,
		Amount:            req.Amount,
		Currency:          payment.Currency(req.Currency),
		Method:            payment.Method(req.Method),
		CheckoutID:        req.CheckoutID,
		ProviderPaymentID: req.ProviderPaymentID,
		ProviderOrderID:   req.ProviderOrderID,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		DeliveryAddress:   req.DeliveryAddress,
		DeliveryNotes:     req.DeliveryNotes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, p)
}

// List godoc
//
//	@ID				listOrderPayments
//	@Summary		List payments of own order
//	@Tags			order-payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]apppayment.PaymentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/payments [get]
func (h *OrderPaymentHandler) List(c *gin.Context) {
	orderID, ok := h.authorizeOrder(c)
	if !ok {
		return
	}

	payments, err := h.payments.ListOrderPayments(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// authorizeOrder parses the order id and checks the caller may act on it.
// Admins skip the ownership check.
func (h *OrderPaymentHandler) authorizeOrder(c *gin.Context) (uuid.UUID, bool) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	if middleware.IsAdmin(c) {
		return orderID, true
	}

	userID, err := callerID(c)
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	if err := h.payments.AuthorizeOrderAccess(c.Request.Context(), orderID, userID); err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return orderID, true
}
