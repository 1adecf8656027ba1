package models

import (
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItemModel is the stored form of an order line
type LineItemModel struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderModel maps the columns of the storefront orders table this service
// reads. Items are kept as a JSON document.
type OrderModel struct {
	ID                  string          `gorm:"type:varchar(64);primaryKey"`
	Version             int             `gorm:"not null;default:1"`
	Status              string          `gorm:"type:varchar(20);not null;default:'pending'"`
	Language            string          `gorm:"type:varchar(8);not null;default:'en'"`
	CustomerName        string          `gorm:"type:varchar(200)"`
	CustomerPhone       string          `gorm:"type:varchar(32);index"`
	StoreName           string          `gorm:"type:varchar(200)"`
	StoreAddress        string          `gorm:"type:varchar(500)"`
	StorePhone          string          `gorm:"type:varchar(32)"`
	Total               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency            string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	PaymentMethod       string          `gorm:"type:varchar(50)"`
	DeliveryAddress     string          `gorm:"type:varchar(500)"`
	SpecialInstructions string          `gorm:"type:text"`
	Items               []LineItemModel `gorm:"type:jsonb;serializer:json"`
	CreatedAt           time.Time       `gorm:"not null;index"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to a domain Order
func (m *OrderModel) ToDomain() *notification.Order {
	items := make([]notification.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = notification.LineItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return &notification.Order{
		BaseAggregateRoot:   shared.BaseAggregateRoot{Version: m.Version},
		ID:                  m.ID,
		Status:              notification.OrderStatus(m.Status),
		Language:            notification.Locale(m.Language),
		CustomerName:        m.CustomerName,
		CustomerPhone:       m.CustomerPhone,
		StoreName:           m.StoreName,
		StoreAddress:        m.StoreAddress,
		StorePhone:          m.StorePhone,
		Total:               m.Total,
		Currency:            m.Currency,
		PaymentMethod:       m.PaymentMethod,
		DeliveryAddress:     m.DeliveryAddress,
		SpecialInstructions: m.SpecialInstructions,
		Items:               items,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// OrderModelFromDomain converts a domain Order to its model
func OrderModelFromDomain(o *notification.Order) *OrderModel {
	items := make([]LineItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = LineItemModel{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return &OrderModel{
		ID:                  o.ID,
		Version:             o.Version,
		Status:              string(o.Status),
		Language:            string(o.Language),
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		StoreName:           o.StoreName,
		StoreAddress:        o.StoreAddress,
		StorePhone:          o.StorePhone,
		Total:               o.Total,
		Currency:            o.Currency,
		PaymentMethod:       o.PaymentMethod,
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
		Items:               items,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
