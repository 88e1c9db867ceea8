package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentRepository persists payments. There is deliberately no Delete.
// Single-record finders return ErrPaymentNotFound when nothing matches.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error

	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByIDForUpdate locks the payment row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByIDWithOrder also loads the owning order and its items
	FindByIDWithOrder(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByCheckoutID(ctx context.Context, checkoutID string) (*Payment, error)
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*Payment, error)

	// FindByOrderID returns an order's payments newest first
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	FindByMethod(ctx context.Context, method Method, page shared.Pagination) ([]*Payment, int64, error)
	// FindPendingCash returns cash-on-delivery payments still awaiting collection, oldest first
	FindPendingCash(ctx context.Context) ([]*Payment, error)
}

// OrderRepository reads orders and writes their derived statuses.
// Finders return ErrOrderNotFound when nothing matches.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate locks the order row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatuses(ctx context.Context, order *Order) error
}
