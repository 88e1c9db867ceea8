package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements payment.OrderRepository using GORM.
// Orders are owned by the checkout flow; this repository only reads them and
// writes the two status columns the payment workflow derives.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Order, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an order and locks its row until the surrounding
// transaction ends. Concurrent status recomputations for one order serialise here.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// UpdateStatuses persists the order's fulfillment and payment status
func (r *GormOrderRepository) UpdateStatuses(ctx context.Context, order *payment.Order) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return payment.ErrOrderNotFound
	}
	order.UpdatedAt = now
	return nil
}

func (r *GormOrderRepository) first(query *gorm.DB, id uuid.UUID) (*payment.Order, error) {
	var model models.OrderModel
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormOrderRepository implements payment.OrderRepository
var _ payment.OrderRepository = (*GormOrderRepository)(nil)
