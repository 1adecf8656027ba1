package notification

import (
	"context"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/telemetry"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/templates"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	inboundKeyPrefix = "inbound:"
	tracerName       = "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
)

// Summary counts what one webhook call contained and what was done with it
type Summary struct {
	Messages   int `json:"messages"`
	Duplicates int `json:"duplicates"`
	Replies    int `json:"replies"`
	Statuses   int `json:"statuses"`
	Skipped    int `json:"skipped"`
	Failures   int `json:"failures"`
}

// InboundRouter processes decoded webhook events: it stores customer
// messages, answers status and help requests, and feeds delivery receipts to
// the tracker. Failures of individual events are logged and counted; they
// never fail the whole webhook call.
type InboundRouter struct {
	messages      notification.InboundMessageRepository
	orders        notification.OrderRepository
	tracker       *DeliveryTracker
	dispatcher    *Dispatcher
	engine        *templates.Engine
	phones        notification.PhoneNormalizer
	store         shared.IdempotencyStore
	idempotency   shared.IdempotencyConfig
	defaultLocale notification.Locale
	logger        *zap.Logger
	metrics       *telemetry.Metrics
	tracer        trace.Tracer
	now           func() time.Time
}

// InboundRouterDeps groups the collaborators of an InboundRouter
type InboundRouterDeps struct {
	Messages      notification.InboundMessageRepository
	Orders        notification.OrderRepository
	Tracker       *DeliveryTracker
	Dispatcher    *Dispatcher
	Engine        *templates.Engine
	Phones        notification.PhoneNormalizer
	Store         shared.IdempotencyStore
	Idempotency   shared.IdempotencyConfig
	DefaultLocale notification.Locale
}

// NewInboundRouter creates an InboundRouter
func NewInboundRouter(deps InboundRouterDeps, logger *zap.Logger) *InboundRouter {
	locale := deps.DefaultLocale
	if !locale.IsValid() {
		locale = notification.DefaultLocale
	}
	return &InboundRouter{
		messages:      deps.Messages,
		orders:        deps.Orders,
		tracker:       deps.Tracker,
		dispatcher:    deps.Dispatcher,
		engine:        deps.Engine,
		phones:        deps.Phones,
		store:         deps.Store,
		idempotency:   deps.Idempotency,
		defaultLocale: locale,
		logger:        logger.Named("inbound_router"),
		tracer:        otel.Tracer(tracerName),
		now:           time.Now,
	}
}

// SetMetrics sets the metrics collector
func (r *InboundRouter) SetMetrics(m *telemetry.Metrics) {
	r.metrics = m
}

// Handle decodes a webhook body and processes every event in payload order.
// Only a body that is not JSON is an error.
func (r *InboundRouter) Handle(ctx context.Context, raw []byte) (Summary, error) {
	ctx, span := r.tracer.Start(ctx, "whatsapp.webhook")
	defer span.End()

	decoded, err := whatsapp.DecodeWebhook(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed payload")
		return Summary{}, err
	}

	summary := Summary{Skipped: decoded.Skipped}
	for i := 0; i < decoded.Skipped; i++ {
		r.record("skipped")
	}

	for _, event := range decoded.Events {
		switch ev := event.(type) {
		case *notification.ReceivedMessage:
			summary.Messages++
			r.record("message")
			r.handleMessage(ctx, ev, &summary)
		case *notification.StatusUpdate:
			summary.Statuses++
			r.record("status")
			if _, err := r.tracker.Apply(ctx, *ev); err != nil {
				summary.Failures++
				logger.WithLogger(logger.WithMessageID(ctx, ev.ProviderMessageID), r.logger).
					Error("failed to apply delivery status", zap.Error(err))
			}
		}
	}

	span.SetAttributes(
		attribute.String("whatsapp.object", decoded.Object),
		attribute.Int("webhook.messages", summary.Messages),
		attribute.Int("webhook.statuses", summary.Statuses),
		attribute.Int("webhook.failures", summary.Failures),
	)
	if summary.Failures > 0 {
		span.SetStatus(codes.Error, "some events failed")
	}
	return summary, nil
}

func (r *InboundRouter) handleMessage(ctx context.Context, msg *notification.ReceivedMessage, summary *Summary) {
	ctx = logger.WithMessageID(ctx, msg.ProviderMessageID)
	log := logger.WithLogger(ctx, r.logger)

	key := inboundKeyPrefix + msg.ProviderMessageID
	if r.seen(ctx, key) {
		summary.Duplicates++
		log.Debug("inbound message already processed")
		return
	}

	intent := notification.DetectIntent(msg.Text)
	receivedAt := msg.Timestamp
	if receivedAt.IsZero() {
		receivedAt = r.now()
	}
	isNew, err := r.messages.Save(ctx, &notification.InboundMessage{
		ProviderMessageID: msg.ProviderMessageID,
		From:              msg.From,
		ContactName:       msg.ContactName,
		Type:              msg.Type,
		Body:              msg.Text,
		Intent:            intent,
		ReceivedAt:        receivedAt,
	})
	if err != nil {
		summary.Failures++
		log.Error("failed to store inbound message", zap.Error(err))
		return
	}
	if !isNew {
		summary.Duplicates++
		log.Debug("inbound message already stored")
		return
	}
	r.markSeen(ctx, key)

	if r.metrics != nil {
		r.metrics.RecordInboundIntent(string(intent))
	}
	log.Info("inbound message received",
		zap.String("from", whatsapp.MaskPhone(msg.From)),
		zap.String("type", msg.Type),
		zap.String("intent", string(intent)),
	)

	var result notification.DispatchResult
	switch intent {
	case notification.IntentStatusQuery:
		result = r.replyWithStatus(ctx, msg)
	case notification.IntentHelp:
		locale := notification.DetectReplyLocale(msg.Text, r.defaultLocale)
		result = r.dispatcher.Send(ctx, msg.From, r.engine.RenderHelp(locale))
	default:
		return
	}

	if result.Success {
		summary.Replies++
		return
	}
	summary.Failures++
	log.Warn("failed to reply to inbound message", zap.Error(result.Err))
}

// replyWithStatus answers with the status of the sender's most recent order,
// in that order's language. The sender is looked up as reported, then without
// the mobile prefix.
func (r *InboundRouter) replyWithStatus(ctx context.Context, msg *notification.ReceivedMessage) notification.DispatchResult {
	var (
		phone  string
		orders []notification.Order
	)
	for _, candidate := range r.phones.LookupVariants(msg.From) {
		found, err := r.orders.FindRecentByCustomerPhone(ctx, candidate, 1)
		if err != nil {
			return notification.NewFailedResult(err)
		}
		if len(found) > 0 {
			phone, orders = candidate, found
			break
		}
	}
	if len(orders) == 0 {
		locale := notification.DetectReplyLocale(msg.Text, r.defaultLocale)
		return r.dispatcher.Send(ctx, msg.From, r.engine.RenderNoRecentOrder(locale))
	}

	req := notification.NewRequestFromOrder(&orders[0], notification.KindStatusReply)
	req.CustomerPhone = msg.From
	result := r.dispatcher.Dispatch(ctx, req)
	if r.tracker != nil {
		if err := r.tracker.RecordDispatched(ctx, orders[0].ID, phone, result); err != nil {
			logger.WithLogger(ctx, r.logger).Error("failed to record dispatched message", zap.Error(err))
		}
	}
	return result
}

func (r *InboundRouter) seen(ctx context.Context, key string) bool {
	if r.store == nil || !r.idempotency.Enabled {
		return false
	}
	done, err := r.store.IsProcessed(ctx, key)
	if err != nil {
		logger.WithLogger(ctx, r.logger).Warn("idempotency check failed, relying on storage", zap.Error(err))
		return false
	}
	return done
}

func (r *InboundRouter) markSeen(ctx context.Context, key string) {
	if r.store == nil || !r.idempotency.Enabled {
		return
	}
	if _, err := r.store.MarkProcessed(ctx, key, idempotencyTTL(r.idempotency)); err != nil {
		logger.WithLogger(ctx, r.logger).Warn("failed to mark inbound message processed", zap.Error(err))
	}
}

func (r *InboundRouter) record(kind string) {
	if r.metrics != nil {
		r.metrics.RecordWebhookEvent(kind)
	}
}
