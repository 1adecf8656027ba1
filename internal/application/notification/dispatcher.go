// Package notification holds the use cases of the order notification service:
// dispatching messages, reacting to order status changes and processing
// provider webhooks.
package notification

import (
	"context"
	"errors"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/telemetry"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/templates"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"go.uber.org/zap"
)

// kindText labels free-form sends in metrics
const kindText = "text"

// Dispatcher renders and sends notifications through the configured sender.
// It makes exactly one send attempt per call.
type Dispatcher struct {
	sender  whatsapp.Sender
	engine  *templates.Engine
	phones  notification.PhoneNormalizer
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(sender whatsapp.Sender, engine *templates.Engine, phones notification.PhoneNormalizer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		engine: engine,
		phones: phones,
		logger: logger.Named("dispatcher"),
	}
}

// SetMetrics sets the metrics collector
func (d *Dispatcher) SetMetrics(m *telemetry.Metrics) {
	d.metrics = m
}

// IsTestMode reports whether sends are simulated
func (d *Dispatcher) IsTestMode() bool {
	return d.sender.IsTestMode()
}

// Send delivers a plain text body to a phone number. An empty or oversized
// body yields a failed result carrying a validation error.
func (d *Dispatcher) Send(ctx context.Context, phone, body string) notification.DispatchResult {
	to := d.phones.Normalize(phone)
	if to == "" {
		return d.reject(ctx, kindText, shared.NewValidationError("phone is required"))
	}
	msg, err := notification.NewRenderedMessage(to, body, notification.DefaultLocale, false)
	if err != nil {
		return d.reject(ctx, kindText, shared.NewValidationError("%s", err.Error()))
	}
	return d.send(ctx, kindText, msg)
}

// Dispatch validates the request, renders it in the request locale and sends
// it to the destination the message kind implies.
func (d *Dispatcher) Dispatch(ctx context.Context, req notification.OrderNotificationRequest) notification.DispatchResult {
	req.ApplyDefaults()
	kind := string(req.Kind)
	if err := req.Validate(); err != nil {
		return d.reject(ctx, kind, err)
	}

	msg, err := d.Render(req)
	if err != nil {
		return d.reject(ctx, kind, err)
	}
	if msg.Truncated() && d.metrics != nil {
		d.metrics.RecordTruncation(kind)
	}

	ctx = logger.WithOrderID(ctx, req.OrderID)
	return d.send(ctx, kind, msg)
}

// Render composes the message for a request without sending it. The request
// is expected to be validated.
func (d *Dispatcher) Render(req notification.OrderNotificationRequest) (notification.RenderedMessage, error) {
	rendered := d.engine.Render(req)
	msg, err := notification.NewRenderedMessage(d.phones.Normalize(req.Destination()), rendered.Body, rendered.Locale, rendered.Truncated)
	if err != nil {
		return notification.RenderedMessage{}, shared.NewValidationError("%s", err.Error())
	}
	return msg, nil
}

func (d *Dispatcher) send(ctx context.Context, kind string, msg notification.RenderedMessage) notification.DispatchResult {
	result := d.sender.SendText(ctx, msg.To(), msg.Body())

	outcome := telemetry.OutcomeSent
	switch {
	case !result.Success:
		outcome = telemetry.OutcomeFailed
		logger.WithLogger(ctx, d.logger).Warn("notification dispatch failed",
			zap.String("kind", kind),
			zap.String("to", whatsapp.MaskPhone(msg.To())),
			zap.Error(result.Err),
		)
	case result.IsTestMode():
		outcome = telemetry.OutcomeSimulated
	}
	if d.metrics != nil {
		d.metrics.RecordDispatch(kind, outcome)
	}
	return result
}

func (d *Dispatcher) reject(ctx context.Context, kind string, err error) notification.DispatchResult {
	logger.WithLogger(ctx, d.logger).Info("notification rejected",
		zap.String("kind", kind),
		zap.Error(err),
	)
	if d.metrics != nil {
		d.metrics.RecordDispatch(kind, telemetry.OutcomeRejected)
	}
	return notification.NewFailedResult(err)
}

// IsRejection reports whether a failed result was refused before any send
// attempt because the input was invalid.
func IsRejection(result notification.DispatchResult) bool {
	var domainErr *shared.DomainError
	return !result.Success && errors.As(result.Err, &domainErr) && domainErr.Code == shared.CodeValidation
}
