package notification

import "github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"

// Aggregate types
const (
	AggregateTypeOrder   = "Order"
	AggregateTypeMessage = "WhatsAppMessage"
)

// Event types
const (
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
	EventTypeOrderPlaced           = "OrderPlaced"
	EventTypeMessageDeliveryFailed = "MessageDeliveryFailed"
)

// OrderStatusChangedEvent is raised for every accepted status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID       string      `json:"order_id"`
	FromStatus    OrderStatus `json:"from_status"`
	ToStatus      OrderStatus `json:"to_status"`
	CustomerPhone string      `json:"customer_phone"`
}

// NewOrderStatusChangedEvent creates the event from the order's current status
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		FromStatus:      from,
		ToStatus:        o.Status,
		CustomerPhone:   o.CustomerPhone,
	}
}

// OrderPlacedEvent is raised once when creation notifications went out
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    string      `json:"order_id"`
	Status     OrderStatus `json:"status"`
	StorePhone string      `json:"store_phone"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Status:          o.Status,
		StorePhone:      o.StorePhone,
	}
}

// MessageDeliveryFailedEvent is raised when the provider reports a failed
// delivery, so support tooling can follow up.
type MessageDeliveryFailedEvent struct {
	shared.BaseDomainEvent
	ProviderMessageID          string `json:"provider_message_id"`
	OrderID                    string `json:"order_id,omitempty"`
	Recipient                  string `json:"recipient"`
	ErrorCode                  int    `json:"error_code"`
	ErrorMessage               string `json:"error_message"`
	RequiresManualIntervention bool   `json:"requires_manual_intervention"`
}

// NewMessageDeliveryFailedEvent creates the event from a failed record
func NewMessageDeliveryFailedEvent(r *DeliveryRecord) *MessageDeliveryFailedEvent {
	return &MessageDeliveryFailedEvent{
		BaseDomainEvent:            shared.NewBaseDomainEvent(EventTypeMessageDeliveryFailed, AggregateTypeMessage, r.ProviderMessageID),
		ProviderMessageID:          r.ProviderMessageID,
		OrderID:                    r.OrderID,
		Recipient:                  r.Recipient,
		ErrorCode:                  r.ErrorCode,
		ErrorMessage:               r.ErrorMessage,
		RequiresManualIntervention: r.RequiresManualIntervention,
	}
}
