package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	AggregateModel
	OrderNumber   string              `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status        order.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingFee   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod order.PaymentMethod `gorm:"type:varchar(20);not null"`
	Notes         string              `gorm:"type:text"`
	ShipRecipient string              `gorm:"column:ship_recipient;type:varchar(200)"`
	ShipPhone     string              `gorm:"column:ship_phone;type:varchar(50)"`
	ShipLine1     string              `gorm:"column:ship_line1;type:varchar(200)"`
	ShipLine2     string              `gorm:"column:ship_line2;type:varchar(200)"`
	ShipCity      string              `gorm:"column:ship_city;type:varchar(100)"`
	ShipState     string              `gorm:"column:ship_state;type:varchar(100)"`
	ShipPostal    string              `gorm:"column:ship_postal_code;type:varchar(20)"`
	ShipCountry   string              `gorm:"column:ship_country;type:char(2)"`
	CancelledAt   *time.Time
	Items         []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a row of order_items.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Image       string          `gorm:"type:varchar(1024)"`
	Size        string          `gorm:"type:varchar(30)"`
	Color       string          `gorm:"type:varchar(30)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order, including loaded items.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Status:            m.Status,
		Subtotal:          m.Subtotal,
		ShippingFee:       m.ShippingFee,
		Total:             m.Total,
		PaymentMethod:     m.PaymentMethod,
		Notes:             m.Notes,
		CancelledAt:       m.CancelledAt,
		Shipping: order.ShippingAddress{
			Recipient:  m.ShipRecipient,
			Phone:      m.ShipPhone,
			Line1:      m.ShipLine1,
			Line2:      m.ShipLine2,
			City:       m.ShipCity,
			State:      m.ShipState,
			PostalCode: m.ShipPostal,
			Country:    m.ShipCountry,
		},
		Items: make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		it := m.Items[i]
		o.Items[i] = order.Item{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Image:       it.Image,
			Size:        it.Size,
			Color:       it.Color,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		}
	}
	return o
}

// OrderModelFromDomain creates a persistence model, including items, from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		Subtotal:      o.Subtotal,
		ShippingFee:   o.ShippingFee,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		ShipRecipient: o.Shipping.Recipient,
		ShipPhone:     o.Shipping.Phone,
		ShipLine1:     o.Shipping.Line1,
		ShipLine2:     o.Shipping.Line2,
		ShipCity:      o.Shipping.City,
		ShipState:     o.Shipping.State,
		ShipPostal:    o.Shipping.PostalCode,
		ShipCountry:   o.Shipping.Country,
		CancelledAt:   o.CancelledAt,
		Items:         make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Image:       it.Image,
			Size:        it.Size,
			Color:       it.Color,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		}
	}
	return m
}
