package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements payment.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error
}

// Save writes every column of an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	result := r.db.WithContext(ctx).Model(model).
		Select("*").Omit("id", "created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a payment and holds a row lock on it until the
// surrounding transaction ends
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// FindByIDWithOrder finds a payment with its order and order items
func (r *GormPaymentRepository) FindByIDWithOrder(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Items").
		Where("id = ?", id))
}

// FindByCheckoutID finds the payment created for a provider checkout
func (r *GormPaymentRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*payment.Payment, error) {
	if checkoutID == "" {
		return nil, payment.ErrPaymentNotFound
	}
	return r.first(r.db.WithContext(ctx).Where("checkout_id = ?", checkoutID).Order("created_at DESC"))
}

// FindByProviderPaymentID finds the payment with the given provider payment id
func (r *GormPaymentRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*payment.Payment, error) {
	if providerPaymentID == "" {
		return nil, payment.ErrPaymentNotFound
	}
	return r.first(r.db.WithContext(ctx).Where("provider_payment_id = ?", providerPaymentID).Order("created_at DESC"))
}

// FindByOrderID returns all payments of an order, newest first
func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindByMethod returns one page of payments using method with the total
// count. Newest first unless the page asks for a whitelisted order.
func (r *GormPaymentRepository) FindByMethod(ctx context.Context, method payment.Method, page shared.Pagination) ([]*payment.Payment, int64, error) {
	page = page.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("method = ?", method).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("method = ?", method).
		Order(paymentSort.orderBy(page.OrderBy, page.OrderDir)).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainPayments(paymentModels), total, nil
}

// FindPendingCash returns cash-on-delivery payments awaiting collection, oldest first
func (r *GormPaymentRepository) FindPendingCash(ctx context.Context) ([]*payment.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("method = ? AND status = ?", payment.MethodCashOnDelivery, payment.StatusCashPending).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

func (r *GormPaymentRepository) first(query *gorm.DB) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func toDomainPayments(paymentModels []models.PaymentModel) []*payment.Payment {
	payments := make([]*payment.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements payment.PaymentRepository
var _ payment.PaymentRepository = (*GormPaymentRepository)(nil)
