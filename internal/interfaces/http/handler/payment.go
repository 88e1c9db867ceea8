package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// PaymentUseCases is the payment service surface used by the HTTP handlers
type PaymentUseCases interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*apppayment.PaymentResponse, error)
	ListPaymentsByMethod(ctx context.Context, method payment.Method, page shared.Pagination) (*shared.Paginated[apppayment.PaymentResponse], error)
	ListPendingCashPayments(ctx context.Context) ([]apppayment.PaymentResponse, error)
	ListOrderPayments(ctx context.Context, orderID uuid.UUID) ([]apppayment.PaymentResponse, error)
	GetPaymentStats(ctx context.Context, orderID uuid.UUID) (*payment.Stats, error)
	RecalculateOrderStatus(ctx context.Context, orderID uuid.UUID) (*apppayment.RecalculateResponse, error)
	ExecuteCommand(ctx context.Context, id uuid.UUID, cmd apppayment.PaymentCommand) (*apppayment.PaymentResponse, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, in apppayment.CreatePaymentInput) (*apppayment.PaymentResponse, error)
	AuthorizeOrderAccess(ctx context.Context, orderID, userID uuid.UUID) error
}

// PaymentSyncer reconciles a payment with its checkout provider
type PaymentSyncer interface {
	SyncPayment(ctx context.Context, id uuid.UUID, opts apppayment.SyncOptions) (*apppayment.SyncResult, error)
}

// PaymentHandler handles the admin payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments PaymentUseCases
	syncer   PaymentSyncer
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentUseCases, syncer PaymentSyncer) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		syncer:   syncer,
	}
}

// Get godoc
//
//	@ID				getPayment
//	@Summary		Get payment
//	@Description	Fetch a single payment together with its order
//	@Tags			admin-payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[apppayment.PaymentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, p)
}

// Update godoc
//
//	@ID				updatePayment
//	@Summary		Run an admin action on a payment
//	@Description	Dispatch on action: confirmCash records collected cash, processRefund refunds the payment, updateStatus forces a status
//	@Tags			admin-payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Payment ID"	format(uuid)
//	@Param			request	body		dto.UpdatePaymentRequest	true	"Admin action"
//	@Success		200		{object}	APIResponse[apppayment.PaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cmd, err := apppayment.ParsePaymentCommand(apppayment.CommandFields{
		Action:            req.Action,
		Actor:             middleware.GetActor(c),
		Notes:             req.Notes,
		Amount:            req.Amount,
		Reason:            req.Reason,
		Status:            req.Status,
		FailureReason:     req.FailureReason,
		CheckoutID:        req.CheckoutID,
		ProviderPaymentID: req.ProviderPaymentID,
		ProviderOrderID:   req.ProviderOrderID,
		ConfirmedAt:       req.ConfirmedAt,
		ConfirmedBy:       req.ConfirmedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	p, err := h.payments.ExecuteCommand(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, p)
}

// Delete godoc
//
//	@ID				deletePayment
//	@Summary		Delete payment
//	@Description	Payments are never deleted; this always answers 400 and leaves the record unchanged
//	@Tags			admin-payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"	format(uuid)
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.payments.DeletePayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, nil)
}

// Sync godoc
//
//	@ID				syncPayment
//	@Summary		Reconcile payment with provider
//	@Description	Fetch the provider's view of a card payment and apply it. forceSync promotes a PENDING payment to PAID whatever status the provider reports. Provider errors still fail the request.
//	@Tags			admin-payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Payment ID"	format(uuid)
//	@Param			request	body		dto.SyncPaymentRequest	false	"Sync options"
//	@Success		200		{object}	APIResponse[apppayment.SyncResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments/{id}/sync [post]
func (h *PaymentHandler) Sync(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	// The body is optional
	var req dto.SyncPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.syncer.SyncPayment(c.Request.Context(), id, apppayment.SyncOptions{
		ForceSync: req.ForceSync,
		Actor:     middleware.GetActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
//
//	@ID				listPayments
//	@Summary		List payments by method
//	@Description	Paginated list of payments using one payment method, newest first
//	@Tags			admin-payments
//	@Produce		json
//	@Param			method		query		string	true	"Payment method"	Enums(CARD, CASH_ON_DELIVERY, BANK_TRANSFER, DIGITAL_WALLET)
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]apppayment.PaymentResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.payments.ListPaymentsByMethod(c.Request.Context(), payment.Method(req.Method), shared.Pagination{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListCashPending godoc
//
//	@ID				listCashPendingPayments
//	@Summary		List pending cash payments
//	@Description	Cash-on-delivery payments still waiting for the courier, oldest first
//	@Tags			admin-payments
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]apppayment.PaymentResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/payments/cash-pending [get]
func (h *PaymentHandler) ListCashPending(c *gin.Context) {
	payments, err := h.payments.ListPendingCashPayments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// ListOrderPayments godoc
//
//	@ID				adminListOrderPayments
//	@Summary		List payments of an order
//	@Tags			admin-payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]apppayment.PaymentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/payments [get]
func (h *PaymentHandler) ListOrderPayments(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
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

// Stats godoc
//
//	@ID				getOrderPaymentStats
//	@Summary		Payment statistics of an order
//	@Description	Attempt counts, paid and refunded totals and the method breakdown of an order's payments
//	@Tags			admin-payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[payment.Stats]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/payment-stats [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.payments.GetPaymentStats(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Recalculate godoc
//
//	@ID				recalculateOrderPaymentStatus
//	@Summary		Recalculate order payment status
//	@Description	Re-run the aggregator over an order's payments and persist the result
//	@Tags			admin-payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[apppayment.RecalculateResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/recalculate [post]
func (h *PaymentHandler) Recalculate(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.RecalculateOrderStatus(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
