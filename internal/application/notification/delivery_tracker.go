package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultInterventionListLimit caps ListRequiringIntervention when no limit is given
const DefaultInterventionListLimit = 50

// DeliveryTracker keeps one delivery record per provider message id
type DeliveryTracker struct {
	repo           notification.DeliveryRecordRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	metrics        *telemetry.Metrics
}

// NewDeliveryTracker creates a DeliveryTracker
func NewDeliveryTracker(repo notification.DeliveryRecordRepository, logger *zap.Logger) *DeliveryTracker {
	return &DeliveryTracker{
		repo:   repo,
		logger: logger.Named("delivery_tracker"),
	}
}

// SetEventPublisher sets the publisher for delivery failure events
func (t *DeliveryTracker) SetEventPublisher(publisher shared.EventPublisher) {
	t.eventPublisher = publisher
}

// SetMetrics sets the metrics collector
func (t *DeliveryTracker) SetMetrics(m *telemetry.Metrics) {
	t.metrics = m
}

// RecordDispatched starts tracking a message accepted by the provider. Test
// mode and failed results carry no provider id and are not tracked. A record
// already created by an earlier status callback is left as is.
func (t *DeliveryTracker) RecordDispatched(ctx context.Context, orderID, recipient string, result notification.DispatchResult) error {
	if !result.Success || result.ProviderMessageID == "" {
		return nil
	}
	_, err := t.repo.FindByProviderMessageID(ctx, result.ProviderMessageID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("record dispatched message: %w", err)
	}

	record := notification.NewDeliveryRecord(result.ProviderMessageID, orderID, recipient)
	if err := t.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("record dispatched message: %w", err)
	}
	return nil
}

// Apply folds a status update into its record, creating the record when the
// message was never seen. It reports whether the stored state changed.
func (t *DeliveryTracker) Apply(ctx context.Context, update notification.StatusUpdate) (bool, error) {
	ctx = logger.WithMessageID(ctx, update.ProviderMessageID)

	record, err := t.repo.FindByProviderMessageID(ctx, update.ProviderMessageID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		record = notification.NewDeliveryRecord(update.ProviderMessageID, "", update.RecipientPhone)
	case err != nil:
		return false, fmt.Errorf("load delivery record: %w", err)
	}

	if !record.Apply(update) {
		logger.WithLogger(ctx, t.logger).Debug("delivery status ignored",
			zap.String("status", string(update.Status)),
			zap.String("current", string(record.Status)),
		)
		return false, nil
	}
	if err := t.repo.Save(ctx, record); err != nil {
		return false, fmt.Errorf("save delivery record: %w", err)
	}
	if t.metrics != nil {
		t.metrics.RecordDeliveryStatus(string(update.Status))
	}

	if record.Status == notification.DeliveryStatusFailed {
		t.onFailure(ctx, record)
	}
	return true, nil
}

func (t *DeliveryTracker) onFailure(ctx context.Context, record *notification.DeliveryRecord) {
	logger.WithLogger(ctx, t.logger).Warn("message delivery failed",
		zap.String("order_id", record.OrderID),
		zap.Int("error_code", record.ErrorCode),
		zap.String("error_title", record.ErrorTitle),
		zap.Bool("requires_manual_intervention", record.RequiresManualIntervention),
	)
	if t.metrics != nil {
		t.metrics.RecordDeliveryFailure(record.ErrorCode)
	}
	if t.eventPublisher != nil {
		if err := t.eventPublisher.Publish(ctx, notification.NewMessageDeliveryFailedEvent(record)); err != nil {
			logger.WithLogger(ctx, t.logger).Error("failed to publish delivery failure", zap.Error(err))
		}
	}
}

// Get returns the tracked state of one message
func (t *DeliveryTracker) Get(ctx context.Context, providerMessageID string) (*notification.DeliveryRecord, error) {
	return t.repo.FindByProviderMessageID(ctx, providerMessageID)
}

// ListRequiringIntervention returns failed deliveries support should look at
func (t *DeliveryTracker) ListRequiringIntervention(ctx context.Context, limit int) ([]notification.DeliveryRecord, error) {
	if limit <= 0 {
		limit = DefaultInterventionListLimit
	}
	return t.repo.FindRequiringIntervention(ctx, limit)
}
