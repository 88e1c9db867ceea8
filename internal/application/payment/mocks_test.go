package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Payment Repository
// =============================================================================

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDWithOrder(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*payment.Payment, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, providerPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) []*payment.Payment); ok {
		return fn(ctx, orderID), args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByMethod(ctx context.Context, method payment.Method, page shared.Pagination) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, method, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) FindPendingCash(ctx context.Context) ([]*payment.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

// =============================================================================
// Mock Order Repository
// =============================================================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatuses(ctx context.Context, order *payment.Order) error {
	return m.Called(ctx, order).Error(0)
}

// =============================================================================
// Mock Checkout Provider, Locker, Idempotency Store, Publisher
// =============================================================================

type MockCheckoutProvider struct {
	mock.Mock
}

func (m *MockCheckoutProvider) GetCheckout(ctx context.Context, id string) (*payment.RemoteCheckout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RemoteCheckout), args.Error(1)
}

func (m *MockCheckoutProvider) GetOrder(ctx context.Context, id string) (*payment.RemoteOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RemoteOrder), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (r *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingPublisher) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	payments  *MockPaymentRepository
	orders    *MockOrderRepository
	publisher *recordingPublisher
	svc       *PaymentService
}

func newFixture() *fixture {
	f := &fixture{
		payments:  new(MockPaymentRepository),
		orders:    new(MockOrderRepository),
		publisher: &recordingPublisher{},
	}
	f.svc = NewPaymentService(PaymentServiceConfig{
		PaymentRepo:    f.payments,
		OrderRepo:      f.orders,
		EventPublisher: f.publisher,
	})
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func newOrder(total string) *payment.Order {
	return &payment.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Total:         decimal.RequireFromString(total),
		Currency:      payment.CurrencyMKD,
		Status:        payment.OrderStatusPending,
		PaymentStatus: payment.StatusPending,
	}
}

func newTestPayment(order *payment.Order, method payment.Method, status payment.Status, amount string) *payment.Payment {
	provider := payment.ProviderPolar
	if method == payment.MethodCashOnDelivery {
		provider = payment.ProviderCash
	}
	return &payment.Payment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Amount:   decimal.RequireFromString(amount),
		Currency: order.Currency,
		Method:   method,
		Status:   status,
		Provider: provider,
	}
}
