package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPaymentRouter(payments *MockPaymentUseCases, syncer *MockPaymentSyncer) *gin.Engine {
	h := NewPaymentHandler(payments, syncer)
	r := gin.New()
	r.Use(withCaller(&testAdmin))
	r.GET("/admin/payments", h.List)
	r.GET("/admin/payments/cash-pending", h.ListCashPending)
	r.GET("/admin/payments/:id", h.Get)
	r.PUT("/admin/payments/:id", h.Update)
	r.DELETE("/admin/payments/:id", h.Delete)
	r.POST("/admin/payments/:id/sync", h.Sync)
	r.GET("/admin/orders/:id/payments", h.ListOrderPayments)
	r.GET("/admin/orders/:id/payment-stats", h.Stats)
	r.POST("/admin/orders/:id/recalculate", h.Recalculate)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentHandler_Get(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("GetPayment", mock.Anything, id).
		Return(&apppayment.PaymentResponse{ID: id, Status: "PAID"}, nil)

	w := serve(r, http.MethodGet, "/admin/payments/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "PAID", data["status"])
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Get_NotFound(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("GetPayment", mock.Anything, id).Return(nil, payment.ErrPaymentNotFound)

	w := serve(r, http.MethodGet, "/admin/payments/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAYMENT_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestPaymentHandler_Get_InvalidID(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	w := serve(r, http.MethodGet, "/admin/payments/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidID, decodeResponse(t, w).Error.Code)
	payments.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
}

func TestPaymentHandler_Update_ConfirmCash(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	expected := apppayment.ConfirmCashCommand{ConfirmedBy: testAdmin.email, Notes: "courier #12"}
	payments.On("ExecuteCommand", mock.Anything, id, expected).
		Return(&apppayment.PaymentResponse{ID: id, Status: "CASH_RECEIVED", ConfirmedBy: testAdmin.email}, nil)

	w := serve(r, http.MethodPut, "/admin/payments/"+id.String(),
		`{"action":"confirmCash","notes":"courier #12"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "CASH_RECEIVED", data["status"])
	assert.Equal(t, testAdmin.email, data["confirmed_by"])
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Update_ProcessRefund(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("ExecuteCommand", mock.Anything, id, mock.MatchedBy(func(cmd apppayment.PaymentCommand) bool {
		refund, ok := cmd.(apppayment.RefundCommand)
		return ok && refund.Amount.Equal(decimal.NewFromInt(400)) &&
			refund.Reason == "damaged" && refund.RefundedBy == testAdmin.email
	})).Return(&apppayment.PaymentResponse{ID: id, Status: "REFUNDED"}, nil)

	w := serve(r, http.MethodPut, "/admin/payments/"+id.String(),
		`{"action":"processRefund","amount":"400","reason":"damaged"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Update_RefundExceedsAmount(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("ExecuteCommand", mock.Anything, id, mock.Anything).Return(nil, payment.ErrRefundExceedsAmount)

	w := serve(r, http.MethodPut, "/admin/payments/"+id.String(),
		`{"action":"processRefund","amount":"5000"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REFUND_EXCEEDS_AMOUNT", decodeResponse(t, w).Error.Code)
}

func TestPaymentHandler_Update_UpdateStatus(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("ExecuteCommand", mock.Anything, id, mock.MatchedBy(func(cmd apppayment.PaymentCommand) bool {
		update, ok := cmd.(apppayment.UpdateStatusCommand)
		return ok && update.Input.Status != nil && *update.Input.Status == payment.StatusFailed &&
			update.Input.FailureReason != nil && *update.Input.FailureReason == "card declined"
	})).Return(&apppayment.PaymentResponse{ID: id, Status: "FAILED"}, nil)

	w := serve(r, http.MethodPut, "/admin/payments/"+id.String(),
		`{"action":"updateStatus","status":"failed","failureReason":"card declined"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Update_UpdateStatusIdentifiers(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("ExecuteCommand", mock.Anything, id, mock.MatchedBy(func(cmd apppayment.PaymentCommand) bool {
		update, ok := cmd.(apppayment.UpdateStatusCommand)
		if !ok || update.Input.Status != nil {
			return false
		}
		in := update.Input
		return in.CheckoutID != nil && *in.CheckoutID == "chk_fix" &&
			in.ProviderPaymentID != nil && *in.ProviderPaymentID == "pay_fix" &&
			in.ProviderOrderID != nil && *in.ProviderOrderID == "ord_fix" &&
			in.ConfirmedBy != nil && *in.ConfirmedBy == "ops" &&
			in.ConfirmedAt != nil && in.ConfirmedAt.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	})).Return(&apppayment.PaymentResponse{ID: id, Status: "PAID"}, nil)

	w := serve(r, http.MethodPut, "/admin/payments/"+id.String(),
		`{"action":"updateStatus","checkoutId":"chk_fix","providerPaymentId":"pay_fix","providerOrderId":"ord_fix","confirmedBy":"ops","confirmedAt":"2026-01-15T10:00:00Z"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Update_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode string
	}{
		{"unknown action", `{"action":"teleport"}`, dto.ErrCodeValidation},
		{"missing action", `{"notes":"x"}`, dto.ErrCodeValidation},
		{"refund without amount", `{"action":"processRefund"}`, "INVALID_REFUND_AMOUNT"},
		{"malformed json", `{"action":`, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := new(MockPaymentUseCases)
			r := setupPaymentRouter(payments, new(MockPaymentSyncer))

			w := serve(r, http.MethodPut, "/admin/payments/"+uuid.NewString(), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expectedCode, decodeResponse(t, w).Error.Code)
			payments.AssertNotCalled(t, "ExecuteCommand", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentHandler_Delete_AlwaysBadRequest(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	id := uuid.New()
	payments.On("DeletePayment", mock.Anything, id).Return(payment.ErrDeleteNotAllowed)

	w := serve(r, http.MethodDelete, "/admin/payments/"+id.String(), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAYMENT_DELETE_FORBIDDEN", decodeResponse(t, w).Error.Code)
	payments.AssertExpectations(t)
}

func TestPaymentHandler_Sync(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		forceSync bool
	}{
		{"without body", "", false},
		{"force sync", `{"forceSync":true}`, true},
		{"explicit false", `{"forceSync":false}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := new(MockPaymentSyncer)
			r := setupPaymentRouter(new(MockPaymentUseCases), syncer)

			id := uuid.New()
			opts := apppayment.SyncOptions{ForceSync: tt.forceSync, Actor: testAdmin.email}
			syncer.On("SyncPayment", mock.Anything, id, opts).Return(&apppayment.SyncResult{
				Synced:         true,
				Updated:        true,
				Forced:         tt.forceSync,
				PreviousStatus: "PENDING",
				CurrentStatus:  "PAID",
			}, nil)

			w := serve(r, http.MethodPost, "/admin/payments/"+id.String()+"/sync", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			data := decodeResponse(t, w).Data.(map[string]any)
			assert.Equal(t, "PAID", data["current_status"])
			assert.Equal(t, tt.forceSync, data["forced"])
			syncer.AssertExpectations(t)
		})
	}
}

func TestPaymentHandler_Sync_Errors(t *testing.T) {
	tests := []struct {
		err            error
		expectedStatus int
	}{
		{payment.ErrSyncNotApplicable, http.StatusBadRequest},
		{payment.ErrSyncMissingIdentifiers, http.StatusBadRequest},
		{payment.ErrSyncInProgress, http.StatusConflict},
		{payment.ErrProviderUnauthorized, http.StatusServiceUnavailable},
		{payment.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{payment.ErrPaymentNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			syncer := new(MockPaymentSyncer)
			r := setupPaymentRouter(new(MockPaymentUseCases), syncer)

			syncer.On("SyncPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(r, http.MethodPost, "/admin/payments/"+uuid.NewString()+"/sync", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPaymentHandler_List(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	page := &shared.Paginated[apppayment.PaymentResponse]{
		Items:    []apppayment.PaymentResponse{{ID: uuid.New(), Method: "CARD"}},
		Total:    21,
		Page:     2,
		PageSize: 10,
	}
	payments.On("ListPaymentsByMethod", mock.Anything, payment.MethodCard, shared.Pagination{Page: 2, PageSize: 10}).
		Return(page, nil)

	w := serve(r, http.MethodGet, "/admin/payments?method=CARD&page=2&page_size=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Len(t, resp.Data.([]any), 1)
	payments.AssertExpectations(t)
}

func TestPaymentHandler_List_RequiresValidMethod(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	for _, query := range []string{"", "?method=BITCOIN", "?method=CARD&page_size=500"} {
		w := serve(r, http.MethodGet, "/admin/payments"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
	payments.AssertNotCalled(t, "ListPaymentsByMethod", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_ListCashPending(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	payments.On("ListPendingCashPayments", mock.Anything).Return([]apppayment.PaymentResponse{
		{ID: uuid.New(), Status: "CASH_PENDING"},
		{ID: uuid.New(), Status: "CASH_PENDING"},
	}, nil)

	w := serve(r, http.MethodGet, "/admin/payments/cash-pending", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w).Data.([]any), 2)
}

func TestPaymentHandler_OrderEndpoints(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	orderID := uuid.New()
	payments.On("ListOrderPayments", mock.Anything, orderID).
		Return([]apppayment.PaymentResponse{{ID: uuid.New(), OrderID: orderID}}, nil)
	payments.On("GetPaymentStats", mock.Anything, orderID).
		Return(&payment.Stats{OrderID: orderID, TotalAttempts: 2, TotalPaid: decimal.NewFromInt(1000)}, nil)
	payments.On("RecalculateOrderStatus", mock.Anything, orderID).
		Return(&apppayment.RecalculateResponse{OrderID: orderID, PaymentStatus: "PAID", OrderStatus: "PROCESSING", Changed: true}, nil)

	w := serve(r, http.MethodGet, "/admin/orders/"+orderID.String()+"/payments", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/admin/orders/"+orderID.String()+"/payment-stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	stats := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(2), stats["total_attempts"])

	w = serve(r, http.MethodPost, "/admin/orders/"+orderID.String()+"/recalculate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	recalculated := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "PAID", recalculated["payment_status"])
	assert.Equal(t, true, recalculated["changed"])

	payments.AssertExpectations(t)
}

func TestPaymentHandler_Recalculate_OrderNotFound(t *testing.T) {
	payments := new(MockPaymentUseCases)
	r := setupPaymentRouter(payments, new(MockPaymentSyncer))

	payments.On("RecalculateOrderStatus", mock.Anything, mock.Anything).Return(nil, payment.ErrOrderNotFound)

	w := serve(r, http.MethodPost, "/admin/orders/"+uuid.NewString()+"/recalculate", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decodeResponse(t, w).Error.Code)
}
