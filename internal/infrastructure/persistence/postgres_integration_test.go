//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container with the schema applied
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func insertOrder(t *testing.T, db *gorm.DB, total int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, user_id, total, currency) VALUES (?, ?, ?, 'MKD')`,
		id, uuid.New(), decimal.NewFromInt(total),
	).Error)
	return id
}

func TestPostgres_PaymentLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	orderID := insertOrder(t, db, 1000)
	scope := NewTxScope(db)

	p, err := payment.NewPayment(payment.NewPaymentParams{
		OrderID:  orderID,
		Amount:   decimal.NewFromInt(1000),
		Currency: payment.CurrencyMKD,
		Method:   payment.MethodCard,
	})
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos apppayment.TransactionalRepositories) error {
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return err
		}
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		p.Status = payment.StatusPaid
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}
		order.ApplyAggregate(payment.Aggregate(order.Total, []*payment.Payment{p}))
		return repos.OrderRepo().UpdateStatuses(ctx, order)
	})
	require.NoError(t, err)

	loaded, err := NewGormPaymentRepository(db).FindByIDWithOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, loaded.Status)
	require.NotNil(t, loaded.Order)
	assert.Equal(t, payment.StatusPaid, loaded.Order.PaymentStatus)
	assert.Equal(t, payment.OrderStatusProcessing, loaded.Order.Status)
}

func TestPostgres_RollbackLeavesNoTrace(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	orderID := insertOrder(t, db, 100)

	p, err := payment.NewPayment(payment.NewPaymentParams{
		OrderID:  orderID,
		Amount:   decimal.NewFromInt(100),
		Currency: payment.CurrencyMKD,
		Method:   payment.MethodCashOnDelivery,
	})
	require.NoError(t, err)

	err = NewTxScope(db).Execute(ctx, func(repos apppayment.TransactionalRepositories) error {
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewGormPaymentRepository(db).FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestPostgres_SchemaGuards(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	orderID := insertOrder(t, db, 100)
	repo := NewGormPaymentRepository(db)

	p, err := payment.NewPayment(payment.NewPaymentParams{
		OrderID:  orderID,
		Amount:   decimal.NewFromInt(100),
		Currency: payment.CurrencyMKD,
		Method:   payment.MethodCard,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	t.Run("payments cannot be deleted", func(t *testing.T) {
		err := db.Exec(`DELETE FROM payments WHERE id = ?`, p.ID).Error
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments cannot be deleted")
	})

	t.Run("refund above amount is rejected", func(t *testing.T) {
		over := decimal.NewFromInt(150)
		p.Status = payment.StatusRefunded
		p.RefundedAmount = &over
		assert.Error(t, repo.Save(ctx, p))
	})
}
