package payment

import (
	"context"

	"github.com/storefront/backend/internal/domain/payment"
)

// TransactionScope runs work against payment and order repositories inside
// one database transaction. A returned error rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	PaymentRepo() payment.PaymentRepository
	OrderRepo() payment.OrderRepository
}

// NoOpTransactionScope runs fn directly against the given repositories
type NoOpTransactionScope struct {
	payments payment.PaymentRepository
	orders   payment.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(payments payment.PaymentRepository, orders payment.OrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{payments: payments, orders: orders}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) PaymentRepo() payment.PaymentRepository { return s.payments }
func (s *NoOpTransactionScope) OrderRepo() payment.OrderRepository     { return s.orders }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
