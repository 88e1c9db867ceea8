package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Read-only lookups. "Not found" surfaces as ErrPaymentNotFound or
// ErrOrderNotFound; any other failure as ErrLookupFailed.

// GetPayment returns one payment joined with its order and items
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDWithOrder(ctx, id)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("payment_id", id.String()))
	}
	return ToPaymentResponse(p), nil
}

// FindPaymentByCheckoutID returns the payment created for a provider checkout
func (s *PaymentService) FindPaymentByCheckoutID(ctx context.Context, checkoutID string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByCheckoutID(ctx, checkoutID)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("checkout_id", checkoutID))
	}
	return ToPaymentResponse(p), nil
}

// FindPaymentByProviderPaymentID returns the payment matching a provider payment id
func (s *PaymentService) FindPaymentByProviderPaymentID(ctx context.Context, providerPaymentID string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByProviderPaymentID(ctx, providerPaymentID)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("provider_payment_id", providerPaymentID))
	}
	return ToPaymentResponse(p), nil
}

// ListOrderPayments returns an order's payments, newest first
func (s *PaymentService) ListOrderPayments(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("order_id", orderID.String()))
	}
	payments, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("order_id", orderID.String()))
	}
	return ToPaymentResponses(payments), nil
}

// ListPaymentsByMethod returns one page of payments using method, newest first
func (s *PaymentService) ListPaymentsByMethod(ctx context.Context, method payment.Method, page shared.Pagination) (*shared.Paginated[PaymentResponse], error) {
	if !method.IsValid() {
		return nil, payment.ErrInvalidMethod
	}
	page = page.Normalize()
	payments, total, err := s.paymentRepo.FindByMethod(ctx, method, page)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("method", method.String()))
	}
	result := shared.NewPaginated(ToPaymentResponses(payments), total, page)
	return &result, nil
}

// ListPendingCashPayments returns cash-on-delivery payments still waiting for
// collection, for admin triage
func (s *PaymentService) ListPendingCashPayments(ctx context.Context) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindPendingCash(ctx)
	if err != nil {
		return nil, s.lookupFailure(ctx, err)
	}
	return ToPaymentResponses(payments), nil
}

// GetPaymentStats summarises an order's payment attempts
func (s *PaymentService) GetPaymentStats(ctx context.Context, orderID uuid.UUID) (*payment.Stats, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("order_id", orderID.String()))
	}
	payments, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, zap.String("order_id", orderID.String()))
	}
	stats := payment.ComputeStats(orderID, payments)
	return &stats, nil
}

// AuthorizeOrderAccess checks that userID owns the order. A foreign order is
// reported as not found so its existence is not leaked.
func (s *PaymentService) AuthorizeOrderAccess(ctx context.Context, orderID, userID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return s.lookupFailure(ctx, err, zap.String("order_id", orderID.String()))
	}
	if !order.IsOwnedBy(userID) {
		return payment.ErrOrderNotFound
	}
	return nil
}

func (s *PaymentService) lookupFailure(ctx context.Context, err error, fields ...zap.Field) error {
	if errors.Is(err, payment.ErrPaymentNotFound) || errors.Is(err, payment.ErrOrderNotFound) {
		return err
	}
	return s.failure(ctx, err, payment.ErrLookupFailed, "Payment lookup failed", fields...)
}
