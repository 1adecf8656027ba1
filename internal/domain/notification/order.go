package notification

import (
	"fmt"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Forward moves are single-step only; cancelled is reachable from every
// non-terminal status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.IsValid() || !target.IsValid() || s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return target == OrderStatusPreparing
	case OrderStatusPreparing:
		return target == OrderStatusReady
	case OrderStatusReady:
		return target == OrderStatusCompleted
	}
	return false
}

// ParseOrderStatus validates a raw status string
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.IsValid() {
		return "", shared.NewValidationError("unknown order status %q", raw)
	}
	return s, nil
}

// LineItem is one ordered product as shown to the customer
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity times unit price
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the slice of a storefront order this service reads and updates:
// status, language and the contact fields needed to notify people about it.
type Order struct {
	shared.BaseAggregateRoot

	ID                  string
	Status              OrderStatus
	Language            Locale
	CustomerName        string
	CustomerPhone       string
	StoreName           string
	StoreAddress        string
	StorePhone          string
	Total               decimal.Decimal
	Currency            string
	PaymentMethod       string
	DeliveryAddress     string
	SpecialInstructions string
	Items               []LineItem
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TransitionTo moves the order to the target status and records an
// OrderStatusChanged event. The order is left untouched on error.
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("unknown order status %q", target)
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot transition order %s from %s to %s", o.ID, o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// AcceptsNewOrderAlert reports whether creation notifications still apply.
// Only orders that have not started fulfilment are announced.
func (o *Order) AcceptsNewOrderAlert() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// Locale returns the order's language, defaulting when unset
func (o *Order) Locale() Locale {
	if o.Language.IsValid() {
		return o.Language
	}
	return DefaultLocale
}
