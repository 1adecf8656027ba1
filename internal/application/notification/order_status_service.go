package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const orderCreatedKeyPrefix = "order-created:"

// StatusChangeResult is the outcome of an accepted status transition
type StatusChangeResult struct {
	Order          *notification.Order
	PreviousStatus notification.OrderStatus
	Notification   notification.DispatchResult
}

// OrderCreatedResult is the outcome of announcing a new order
type OrderCreatedResult struct {
	Order *notification.Order
	// Duplicate is set when the announcement already went out; nothing was sent
	Duplicate       bool
	Customer        notification.DispatchResult
	Business        *notification.DispatchResult
	BusinessSkipped bool
}

// OrderStatusService moves orders through their lifecycle and notifies the
// customer about every accepted move.
type OrderStatusService struct {
	orders         notification.OrderRepository
	dispatcher     *Dispatcher
	tracker        *DeliveryTracker
	store          shared.IdempotencyStore
	idempotency    shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderStatusService creates an OrderStatusService
func NewOrderStatusService(
	orders notification.OrderRepository,
	dispatcher *Dispatcher,
	tracker *DeliveryTracker,
	store shared.IdempotencyStore,
	idempotency shared.IdempotencyConfig,
	logger *zap.Logger,
) *OrderStatusService {
	return &OrderStatusService{
		orders:      orders,
		dispatcher:  dispatcher,
		tracker:     tracker,
		store:       store,
		idempotency: idempotency,
		logger:      logger.Named("order_status"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderStatusService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// UpdateStatus applies a transition, persists it and sends exactly one
// customer notification in the order's language. A failed send does not roll
// the transition back; the failure is reported in the result.
func (s *OrderStatusService) UpdateStatus(ctx context.Context, orderID, rawStatus string) (*StatusChangeResult, error) {
	target, err := notification.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithOrderID(ctx, orderID)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("order status changed",
		zap.String("from", from.String()),
		zap.String("to", target.String()),
	)

	kind := notification.KindStatusUpdate
	if target == notification.OrderStatusConfirmed {
		kind = notification.KindConfirmation
	}
	result := s.notify(ctx, order, kind)

	s.publish(ctx, order.PullDomainEvents()...)

	return &StatusChangeResult{Order: order, PreviousStatus: from, Notification: result}, nil
}

// NotifyOrderCreated sends the customer confirmation and the store alert for
// a new order. Orders already past confirmation are refused, and an order is
// announced at most once: the marker is written only after at least one
// message went out, so a fully failed attempt can be retried.
func (s *OrderStatusService) NotifyOrderCreated(ctx context.Context, orderID string) (*OrderCreatedResult, error) {
	ctx = logger.WithOrderID(ctx, orderID)
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.AcceptsNewOrderAlert() {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("order %s is %s; creation notifications no longer apply", order.ID, order.Status))
	}

	key := orderCreatedKeyPrefix + order.ID
	if s.alreadyAnnounced(ctx, key) {
		logger.WithLogger(ctx, s.logger).Info("order creation already announced")
		return &OrderCreatedResult{Order: order, Duplicate: true}, nil
	}

	res := &OrderCreatedResult{Order: order}
	res.Customer = s.notify(ctx, order, notification.KindConfirmation)
	if order.StorePhone == "" {
		res.BusinessSkipped = true
		logger.WithLogger(ctx, s.logger).Warn("order has no store phone; business alert skipped")
	} else {
		business := s.notify(ctx, order, notification.KindBusinessAlert)
		res.Business = &business
	}

	if res.Customer.Success || (res.Business != nil && res.Business.Success) {
		s.markAnnounced(ctx, key)
		s.publish(ctx, notification.NewOrderPlacedEvent(order))
	}
	return res, nil
}

func (s *OrderStatusService) notify(ctx context.Context, order *notification.Order, kind notification.MessageKind) notification.DispatchResult {
	req := notification.NewRequestFromOrder(order, kind)
	result := s.dispatcher.Dispatch(ctx, req)
	if s.tracker != nil {
		if err := s.tracker.RecordDispatched(ctx, order.ID, req.Destination(), result); err != nil {
			logger.WithLogger(ctx, s.logger).Error("failed to record dispatched message", zap.Error(err))
		}
	}
	return result
}

func (s *OrderStatusService) alreadyAnnounced(ctx context.Context, key string) bool {
	if s.store == nil || !s.idempotency.Enabled {
		return false
	}
	done, err := s.store.IsProcessed(ctx, key)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("idempotency check failed, announcing anyway", zap.Error(err))
		return false
	}
	return done
}

func (s *OrderStatusService) markAnnounced(ctx context.Context, key string) {
	if s.store == nil || !s.idempotency.Enabled {
		return
	}
	if _, err := s.store.MarkProcessed(ctx, key, idempotencyTTL(s.idempotency)); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to mark order creation announced", zap.Error(err))
	}
}

// idempotencyTTL falls back to the default window when none is configured
func idempotencyTTL(cfg shared.IdempotencyConfig) time.Duration {
	if cfg.TTL <= 0 {
		return shared.DefaultIdempotencyConfig().TTL
	}
	return cfg.TTL
}

func (s *OrderStatusService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Error("failed to publish domain events", zap.Error(err))
	}
}
