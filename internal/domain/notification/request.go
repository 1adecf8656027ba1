package notification

import (
	"strings"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MessageKind selects which template family renders a notification
type MessageKind string

const (
	// KindConfirmation tells the customer their order was received or confirmed
	KindConfirmation MessageKind = "confirmation"
	// KindStatusUpdate tells the customer the order moved to a new status
	KindStatusUpdate MessageKind = "status_update"
	// KindBusinessAlert tells the store owner a new order arrived
	KindBusinessAlert MessageKind = "business_alert"
	// KindStatusReply answers a customer's status question
	KindStatusReply MessageKind = "status_reply"
)

// IsValid checks if the kind is known
func (k MessageKind) IsValid() bool {
	switch k {
	case KindConfirmation, KindStatusUpdate, KindBusinessAlert, KindStatusReply:
		return true
	}
	return false
}

// OrderNotificationRequest carries everything needed to render and send one
// order notification.
type OrderNotificationRequest struct {
	OrderID             string
	Kind                MessageKind
	CustomerName        string
	CustomerPhone       string
	StoreName           string
	StoreAddress        string
	StorePhone          string
	Total               decimal.Decimal
	Currency            string
	Items               []LineItem
	DeliveryAddress     string
	SpecialInstructions string
	PaymentMethod       string
	Status              OrderStatus
	Locale              Locale
}

// NewRequestFromOrder builds a request of the given kind from an order
func NewRequestFromOrder(o *Order, kind MessageKind) OrderNotificationRequest {
	items := make([]LineItem, len(o.Items))
	copy(items, o.Items)
	return OrderNotificationRequest{
		OrderID:             o.ID,
		Kind:                kind,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		StoreName:           o.StoreName,
		StoreAddress:        o.StoreAddress,
		StorePhone:          o.StorePhone,
		Total:               o.Total,
		Currency:            o.Currency,
		Items:               items,
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
		PaymentMethod:       o.PaymentMethod,
		Status:              o.Status,
		Locale:              o.Locale(),
	}
}

// Destination returns the raw phone the message goes to
func (r *OrderNotificationRequest) Destination() string {
	if r.Kind == KindBusinessAlert {
		return r.StorePhone
	}
	return r.CustomerPhone
}

// ApplyDefaults fills optional fields left empty by callers
func (r *OrderNotificationRequest) ApplyDefaults() {
	if r.Kind == "" {
		r.Kind = KindStatusUpdate
	}
	if r.Locale == "" {
		r.Locale = DefaultLocale
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

// Validate checks the request invariants and returns a VALIDATION_ERROR
// describing the first violation.
func (r *OrderNotificationRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return shared.NewValidationError("order id is required")
	}
	if !r.Kind.IsValid() {
		return shared.NewValidationError("unknown message kind %q", r.Kind)
	}
	if digitsOnly(r.Destination()) == "" {
		if r.Kind == KindBusinessAlert {
			return shared.NewValidationError("store phone is required")
		}
		return shared.NewValidationError("customer phone is required")
	}
	if !r.Status.IsValid() {
		return shared.NewValidationError("unknown order status %q", r.Status)
	}
	if !r.Locale.IsValid() {
		return shared.NewValidationError("unsupported locale %q", r.Locale)
	}
	if !isCurrencyCode(r.Currency) {
		return shared.NewValidationError("currency must be a 3-letter code, got %q", r.Currency)
	}
	if r.Total.IsNegative() {
		return shared.NewValidationError("total cannot be negative")
	}
	if len(r.Items) == 0 {
		return shared.NewValidationError("at least one line item is required")
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Name) == "" {
			return shared.NewValidationError("items[%d].name is required", i)
		}
		if item.Quantity <= 0 {
			return shared.NewValidationError("items[%d].quantity must be positive", i)
		}
		if !item.UnitPrice.IsPositive() {
			return shared.NewValidationError("items[%d].unit_price must be positive", i)
		}
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
