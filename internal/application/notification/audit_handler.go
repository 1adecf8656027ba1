package notification

import (
	"context"
	"fmt"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditHandler writes an audit line for every order and delivery event and
// raises an error-level alert for failed deliveries that need a person.
// It never sends messages.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return []string{
		notification.EventTypeOrderStatusChanged,
		notification.EventTypeOrderPlaced,
		notification.EventTypeMessageDeliveryFailed,
	}
}

// Handle processes one domain event
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithLogger(ctx, h.logger).With(
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	switch e := event.(type) {
	case *notification.OrderStatusChangedEvent:
		log.Info("order status changed",
			zap.String("order_id", e.OrderID),
			zap.String("from", e.FromStatus.String()),
			zap.String("to", e.ToStatus.String()),
		)
	case *notification.OrderPlacedEvent:
		log.Info("order placed notifications sent",
			zap.String("order_id", e.OrderID),
			zap.String("status", e.Status.String()),
		)
	case *notification.MessageDeliveryFailedEvent:
		fields := []zap.Field{
			zap.String("provider_message_id", e.ProviderMessageID),
			zap.String("order_id", e.OrderID),
			zap.Int("error_code", e.ErrorCode),
			zap.String("error_message", e.ErrorMessage),
		}
		if e.RequiresManualIntervention {
			log.Error("delivery failed and requires manual intervention", fields...)
		} else {
			log.Warn("delivery failed with a transient error", fields...)
		}
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*AuditHandler)(nil)
