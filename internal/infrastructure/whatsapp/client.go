// Package whatsapp talks to the WhatsApp Cloud API: sending text messages
// and decoding webhook callbacks.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"

// Errors returned inside failed dispatch results
var (
	ErrProviderUnavailable = errors.New("whatsapp: provider unavailable")
	ErrMalformedResponse   = errors.New("whatsapp: malformed provider response")
)

// Sender sends a text body to an already-normalized phone number
type Sender interface {
	SendText(ctx context.Context, to, body string) notification.DispatchResult
	IsTestMode() bool
}

// NewSender returns the test-mode sender or the live client depending on cfg.TestMode
func NewSender(cfg Config, logger *zap.Logger) (Sender, error) {
	if cfg.TestMode {
		return NewTestSender(logger), nil
	}
	return NewClient(cfg, logger)
}

// Client sends messages through the Cloud API. Each call makes exactly one
// HTTP request; it never retries.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewClient creates a live client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("whatsapp"),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// IsTestMode implements Sender
func (c *Client) IsTestMode() bool { return false }

// SendText implements Sender
func (c *Client) SendText(ctx context.Context, to, body string) notification.DispatchResult {
	ctx, span := c.tracer.Start(ctx, "whatsapp.SendText", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("whatsapp.phone_number_id", c.config.PhoneNumberID),
		attribute.Int("whatsapp.body_length", len(body)),
	)

	start := time.Now()
	messageID, err := c.send(ctx, to, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("whatsapp send failed",
			zap.String("to", MaskPhone(to)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return notification.NewFailedResult(err)
	}

	span.SetAttributes(attribute.String("whatsapp.message_id", messageID))
	c.logger.Info("whatsapp message sent",
		zap.String("to", MaskPhone(to)),
		zap.String("message_id", messageID),
		zap.Int("body_length", len(body)),
		zap.Duration("latency", time.Since(start)),
	)
	return notification.NewProviderResult(messageID)
}

func (c *Client) send(ctx context.Context, to, body string) (string, error) {
	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return "", fmt.Errorf("whatsapp: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.MessagesURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("whatsapp: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp.StatusCode, respBody)
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Messages) == 0 || parsed.Messages[0].ID == "" {
		return "", fmt.Errorf("%w: no message id", ErrMalformedResponse)
	}
	return parsed.Messages[0].ID, nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		apiErr.TraceID = parsed.Error.FBTraceID
		return apiErr
	}
	apiErr.Message = http.StatusText(status)
	if apiErr.Message == "" {
		apiErr.Message = "unexpected response"
	}
	return apiErr
}

// TestSender logs messages instead of sending them
type TestSender struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewTestSender creates a sender that performs no network I/O
func NewTestSender(logger *zap.Logger) *TestSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestSender{logger: logger.Named("whatsapp"), now: time.Now}
}

// IsTestMode implements Sender
func (s *TestSender) IsTestMode() bool { return true }

// SendText implements Sender. It always succeeds with a time-derived synthetic id.
func (s *TestSender) SendText(_ context.Context, to, body string) notification.DispatchResult {
	id := fmt.Sprintf("test_%d", s.now().UnixNano())
	s.logger.Info("whatsapp test mode: message not sent",
		zap.String("to", MaskPhone(to)),
		zap.String("synthetic_id", id),
		zap.Int("body_length", len(body)),
	)
	s.logger.Debug("whatsapp test mode: message body",
		zap.String("synthetic_id", id),
		zap.String("body", body),
	)
	return notification.NewSyntheticResult(id)
}

// MaskPhone hides all but the last four digits of a phone number
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(phone)-4:], phone[len(phone)-4:])
	return string(masked)
}

var (
	_ Sender = (*Client)(nil)
	_ Sender = (*TestSender)(nil)
)
