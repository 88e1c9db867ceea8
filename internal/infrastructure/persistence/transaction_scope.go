package persistence

import (
	"context"

	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// TxScope runs a payment write and the order recalculation it triggers in
// one database transaction. Any error from fn rolls both back.
type TxScope struct {
	db *gorm.DB
}

func NewTxScope(db *gorm.DB) *TxScope {
	return &TxScope{db: db}
}

func (s *TxScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos{
			payments: NewGormPaymentRepository(tx),
			orders:   NewGormOrderRepository(tx),
		})
	})
}

type txRepos struct {
	payments payment.PaymentRepository
	orders   payment.OrderRepository
}

func (r txRepos) PaymentRepo() payment.PaymentRepository { return r.payments }
func (r txRepos) OrderRepo() payment.OrderRepository     { return r.orders }

var _ apppayment.TransactionScope = (*TxScope)(nil)
