package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// AdminPaymentRoutes mounts the back-office payment routes. auth must
// authenticate the caller and require the admin role.
func AdminPaymentRoutes(h *handler.PaymentHandler, auth ...gin.HandlerFunc) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(auth...)

	admin.Group("admin-payments", "/payments").
		Handle(http.MethodGet, "", "list payments by method", h.List).
		Handle(http.MethodGet, "/cash-pending", "pending cash-on-delivery payments", h.ListCashPending).
		Handle(http.MethodGet, "/:id", "fetch one payment", h.Get).
		Handle(http.MethodPut, "/:id", "confirmCash, processRefund or updateStatus", h.Update).
		Handle(http.MethodDelete, "/:id", "refused, payments are kept", h.Delete).
		Handle(http.MethodPost, "/:id/sync", "reconcile with the provider", h.Sync)

	admin.Group("admin-orders", "/orders").
		Handle(http.MethodGet, "/:id/payments", "payments of an order", h.ListOrderPayments).
		Handle(http.MethodGet, "/:id/payment-stats", "payment statistics of an order", h.Stats).
		Handle(http.MethodPost, "/:id/recalculate", "re-run the order status aggregator", h.Recalculate)

	return admin
}

// OrderPaymentRoutes mounts the customer routes. auth must authenticate the caller.
func OrderPaymentRoutes(h *handler.OrderPaymentHandler, auth ...gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		Use(auth...).
		Handle(http.MethodPost, "/:id/payments", "start a payment attempt", h.Create).
		Handle(http.MethodGet, "/:id/payments", "payments of own order", h.List)
}

// WebhookRoutes mounts the provider webhooks. They authenticate by signature.
func WebhookRoutes(h *handler.PolarWebhookHandler) *DomainGroup {
	return NewDomainGroup("webhooks", "/webhooks").
		Handle(http.MethodPost, "/polar", "polar checkout and order events", h.Handle)
}
