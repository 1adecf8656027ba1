package notification

import (
	"context"
	"time"
)

// OrderRepository reads and updates the order slice owned by the storefront
type OrderRepository interface {
	// FindByID returns shared.ErrNotFound when the order does not exist
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindRecentByCustomerPhone returns the newest orders for a normalized phone,
	// most recent first.
	FindRecentByCustomerPhone(ctx context.Context, phone string, limit int) ([]Order, error)
	// UpdateStatus persists the order's status using optimistic locking on its
	// version. It returns shared.ErrConcurrencyConflict when the stored version
	// moved, and bumps the in-memory version on success.
	UpdateStatus(ctx context.Context, order *Order) error
}

// InboundMessage is a customer message kept for support visibility
type InboundMessage struct {
	ProviderMessageID string
	From              string
	ContactName       string
	Type              string
	Body              string
	Intent            Intent
	ReceivedAt        time.Time
}

// InboundMessageRepository stores inbound messages, one row per provider id
type InboundMessageRepository interface {
	// Save stores the message and reports whether it was new. A message
	// already stored under the same provider id is left unchanged.
	Save(ctx context.Context, msg *InboundMessage) (bool, error)
}

// DeliveryRecordRepository stores delivery records keyed by provider message id
type DeliveryRecordRepository interface {
	// FindByProviderMessageID returns shared.ErrNotFound when nothing is tracked yet
	FindByProviderMessageID(ctx context.Context, id string) (*DeliveryRecord, error)
	// Save inserts or replaces the record
	Save(ctx context.Context, record *DeliveryRecord) error
	// FindRequiringIntervention lists failed records flagged for a person,
	// most recent failure first.
	FindRequiringIntervention(ctx context.Context, limit int) ([]DeliveryRecord, error)
}
