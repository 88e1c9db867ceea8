// Package models holds the GORM rows for payments and orders. The repositories
// convert them to and from the domain types, which carry no ORM tags.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
	"gorm.io/datatypes"
)

// Row carries the key and timestamps every table shares
type Row struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// PaymentModel is the persistence model for a payment attempt.
type PaymentModel struct {
	Row
	OrderID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Currency          payment.Currency `gorm:"type:varchar(3);not null"`
	Method            payment.Method   `gorm:"type:varchar(30);not null;index"`
	Status            payment.Status   `gorm:"type:varchar(20);not null;index"`
	Provider          string           `gorm:"type:varchar(30);not null"`
	CheckoutID        string           `gorm:"type:varchar(100);index"`
	ProviderPaymentID string           `gorm:"type:varchar(100);index"`
	ProviderOrderID   string           `gorm:"type:varchar(100)"`
	CustomerName      string           `gorm:"type:varchar(200)"`
	CustomerEmail     string           `gorm:"type:varchar(200)"`
	DeliveryAddress   string           `gorm:"type:text"`
	DeliveryNotes     string           `gorm:"type:text"`
	RefundedAmount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	RefundedAt        *time.Time
	RefundReason      string `gorm:"type:varchar(500)"`
	ConfirmedAt       *time.Time
	ConfirmedBy       string                              `gorm:"type:varchar(100)"`
	FailureReason     string                              `gorm:"type:varchar(500)"`
	Metadata          datatypes.JSONType[payment.Metadata] `gorm:"not null"`

	Order *OrderModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment. The order is
// included only when it was preloaded.
func (m *PaymentModel) ToDomain() *payment.Payment {
	p := &payment.Payment{
		ID:                m.ID,
		OrderID:           m.OrderID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Method:            m.Method,
		Status:            m.Status,
		Provider:          m.Provider,
		CheckoutID:        m.CheckoutID,
		ProviderPaymentID: m.ProviderPaymentID,
		ProviderOrderID:   m.ProviderOrderID,
		CustomerName:      m.CustomerName,
		CustomerEmail:     m.CustomerEmail,
		DeliveryAddress:   m.DeliveryAddress,
		DeliveryNotes:     m.DeliveryNotes,
		RefundedAmount:    m.RefundedAmount,
		RefundedAt:        m.RefundedAt,
		RefundReason:      m.RefundReason,
		ConfirmedAt:       m.ConfirmedAt,
		ConfirmedBy:       m.ConfirmedBy,
		FailureReason:     m.FailureReason,
		Metadata:          m.Metadata.Data(),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Order != nil {
		p.Order = m.Order.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.ID = p.ID
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	m.OrderID = p.OrderID
	m.Amount = p.Amount
	m.Currency = p.Currency
	m.Method = p.Method
	m.Status = p.Status
	m.Provider = p.Provider
	m.CheckoutID = p.CheckoutID
	m.ProviderPaymentID = p.ProviderPaymentID
	m.ProviderOrderID = p.ProviderOrderID
	m.CustomerName = p.CustomerName
	m.CustomerEmail = p.CustomerEmail
	m.DeliveryAddress = p.DeliveryAddress
	m.DeliveryNotes = p.DeliveryNotes
	m.RefundedAmount = p.RefundedAmount
	m.RefundedAt = p.RefundedAt
	m.RefundReason = p.RefundReason
	m.ConfirmedAt = p.ConfirmedAt
	m.ConfirmedBy = p.ConfirmedBy
	m.FailureReason = p.FailureReason
	m.Metadata = datatypes.NewJSONType(p.Metadata)
}

// PaymentModelFromDomain creates a new PaymentModel from a domain Payment
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// OrderModel is the persistence model for an order. Only the fields the
// payment workflow reads or writes are mapped.
type OrderModel struct {
	Row
	UserID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Total         decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Currency      payment.Currency    `gorm:"type:varchar(3);not null"`
	Status        payment.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentStatus payment.Status      `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Items         []OrderItemModel    `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *payment.Order {
	items := make([]payment.OrderItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.ToDomain()
	}
	return &payment.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Total:         m.Total,
		Currency:      m.Currency,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		Items:         items,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *payment.Order) {
	m.ID = o.ID
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.UserID = o.UserID
	m.Total = o.Total
	m.Currency = o.Currency
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
}

// OrderItemModel is one line of an order
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m OrderItemModel) ToDomain() payment.OrderItem {
	return payment.OrderItem{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}
