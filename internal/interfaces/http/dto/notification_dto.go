package dto

import (
	"time"

	appnotification "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one ordered product
type LineItemRequest struct {
	Name      string          `json:"name" binding:"required,max=200"`
	Quantity  int             `json:"quantity" binding:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderNotificationRequest is the body of POST /api/v1/notifications/orders.
// Shape checks happen at binding; the domain request re-validates business
// rules such as positive prices and the destination phone.
type OrderNotificationRequest struct {
	OrderID             string            `json:"order_id" binding:"required,max=64"`
	Kind                string            `json:"kind" binding:"omitempty,oneof=confirmation status_update business_alert status_reply"`
	CustomerName        string            `json:"customer_name" binding:"max=200"`
	CustomerPhone       string            `json:"customer_phone" binding:"max=32"`
	StoreName           string            `json:"store_name" binding:"max=200"`
	StoreAddress        string            `json:"store_address" binding:"max=500"`
	StorePhone          string            `json:"store_phone" binding:"max=32"`
	Total               decimal.Decimal   `json:"total"`
	Currency            string            `json:"currency" binding:"required,len=3,alpha"`
	Items               []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress     string            `json:"delivery_address" binding:"max=500"`
	SpecialInstructions string            `json:"special_instructions" binding:"max=1000"`
	PaymentMethod       string            `json:"payment_method" binding:"max=100"`
	Status              string            `json:"status" binding:"required,oneof=pending confirmed preparing ready completed cancelled"`
	Locale              string            `json:"locale" binding:"omitempty,oneof=es en"`
}

// ToDomain converts the body into a dispatcher request
func (r OrderNotificationRequest) ToDomain() notification.OrderNotificationRequest {
	items := make([]notification.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = notification.LineItem{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return notification.OrderNotificationRequest{
		OrderID:             r.OrderID,
		Kind:                notification.MessageKind(r.Kind),
		CustomerName:        r.CustomerName,
		CustomerPhone:       r.CustomerPhone,
		StoreName:           r.StoreName,
		StoreAddress:        r.StoreAddress,
		StorePhone:          r.StorePhone,
		Total:               r.Total,
		Currency:            r.Currency,
		Items:               items,
		DeliveryAddress:     r.DeliveryAddress,
		SpecialInstructions: r.SpecialInstructions,
		PaymentMethod:       r.PaymentMethod,
		Status:              notification.OrderStatus(r.Status),
		Locale:              notification.Locale(r.Locale),
	}
}

// UpdateOrderStatusRequest is the body of POST /api/v1/orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// DispatchResultResponse reports one send attempt
type DispatchResultResponse struct {
	Success           bool      `json:"success"`
	MessageID         string    `json:"message_id,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	TestMode          bool      `json:"test_mode"`
	Error             string    `json:"error,omitempty"`
	SentAt            time.Time `json:"sent_at"`
}

// NewDispatchResultResponse converts a dispatch result
func NewDispatchResultResponse(r notification.DispatchResult) DispatchResultResponse {
	return DispatchResultResponse{
		Success:           r.Success,
		MessageID:         r.MessageID(),
		ProviderMessageID: r.ProviderMessageID,
		TestMode:          r.IsTestMode(),
		Error:             r.ErrorMessage(),
		SentAt:            r.SentAt,
	}
}

// OrderStatusResponse reports a status change and the customer notification
type OrderStatusResponse struct {
	OrderID        string                 `json:"order_id"`
	PreviousStatus string                 `json:"previous_status"`
	Status         string                 `json:"status"`
	Notification   DispatchResultResponse `json:"notification"`
}

// NewOrderStatusResponse converts a status change result
func NewOrderStatusResponse(r *appnotification.StatusChangeResult) OrderStatusResponse {
	return OrderStatusResponse{
		OrderID:        r.Order.ID,
		PreviousStatus: string(r.PreviousStatus),
		Status:         string(r.Order.Status),
		Notification:   NewDispatchResultResponse(r.Notification),
	}
}

// OrderCreatedResponse reports the order-created notifications
type OrderCreatedResponse struct {
	OrderID         string                  `json:"order_id"`
	Duplicate       bool                    `json:"duplicate"`
	Customer        *DispatchResultResponse `json:"customer,omitempty"`
	Business        *DispatchResultResponse `json:"business,omitempty"`
	BusinessSkipped bool                    `json:"business_skipped,omitempty"`
}

// NewOrderCreatedResponse converts an order-created result
func NewOrderCreatedResponse(r *appnotification.OrderCreatedResult) OrderCreatedResponse {
	resp := OrderCreatedResponse{
		OrderID:         r.Order.ID,
		Duplicate:       r.Duplicate,
		BusinessSkipped: r.BusinessSkipped,
	}
	if !r.Duplicate {
		customer := NewDispatchResultResponse(r.Customer)
		resp.Customer = &customer
	}
	if r.Business != nil {
		business := NewDispatchResultResponse(*r.Business)
		resp.Business = &business
	}
	return resp
}

// DeliveryRecordResponse is the tracked state of one outbound message
type DeliveryRecordResponse struct {
	MessageID                  string     `json:"message_id"`
	OrderID                    string     `json:"order_id,omitempty"`
	Recipient                  string     `json:"recipient"`
	Status                     string     `json:"status"`
	SentAt                     *time.Time `json:"sent_at,omitempty"`
	DeliveredAt                *time.Time `json:"delivered_at,omitempty"`
	ReadAt                     *time.Time `json:"read_at,omitempty"`
	FailedAt                   *time.Time `json:"failed_at,omitempty"`
	ErrorCode                  int        `json:"error_code,omitempty"`
	ErrorTitle                 string     `json:"error_title,omitempty"`
	ErrorMessage               string     `json:"error_message,omitempty"`
	RequiresManualIntervention bool       `json:"requires_manual_intervention"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// NewDeliveryRecordResponse converts a delivery record. The recipient is
// masked; support staff look the number up on the order.
func NewDeliveryRecordResponse(r *notification.DeliveryRecord, mask func(string) string) DeliveryRecordResponse {
	recipient := r.Recipient
	if mask != nil {
		recipient = mask(recipient)
	}
	return DeliveryRecordResponse{
		MessageID:                  r.ProviderMessageID,
		OrderID:                    r.OrderID,
		Recipient:                  recipient,
		Status:                     string(r.Status),
		SentAt:                     r.SentAt,
		DeliveredAt:                r.DeliveredAt,
		ReadAt:                     r.ReadAt,
		FailedAt:                   r.FailedAt,
		ErrorCode:                  r.ErrorCode,
		ErrorTitle:                 r.ErrorTitle,
		ErrorMessage:               r.ErrorMessage,
		RequiresManualIntervention: r.RequiresManualIntervention,
		UpdatedAt:                  r.UpdatedAt,
	}
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	Success bool                    `json:"success"`
	Summary appnotification.Summary `json:"summary"`
}
