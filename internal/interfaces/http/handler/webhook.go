package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	appnotification "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChallengeVerifier answers the provider's subscription handshake
type ChallengeVerifier interface {
	Verify(mode, token, challenge string) (string, error)
}

// InboundProcessor handles one webhook delivery
type InboundProcessor interface {
	Handle(ctx context.Context, raw []byte) (appnotification.Summary, error)
}

// WebhookHandler serves the messaging provider's callback endpoint.
// These endpoints are called by the provider and do not require a service token.
type WebhookHandler struct {
	BaseHandler
	verifier  ChallengeVerifier
	processor InboundProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(verifier ChallengeVerifier, processor InboundProcessor) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		processor: processor,
	}
}

// Verify godoc
//
//	@Summary		Verify the webhook subscription
//	@Tags			webhooks
//	@Produce		plain
//	@Param			hub.mode			query		string	true	"Always subscribe"
//	@Param			hub.verify_token	query		string	true	"Shared verify token"
//	@Param			hub.challenge		query		string	true	"Value to echo"
//	@Success		200					{string}	string	"The challenge"
//	@Failure		403					{object}	dto.Response
//	@Router			/webhooks/whatsapp [get]
func (h *WebhookHandler) Verify(c *gin.Context) {
	challenge, err := h.verifier.Verify(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		logger.GetGinLogger(c).Warn("Webhook verification rejected", zap.String("mode", c.Query("hub.mode")))
		h.ErrorWithCode(c, dto.ErrCodeForbidden, "Webhook verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive godoc
//
//	@Summary		Receive message and delivery events
//	@Description	Always acknowledges decodable payloads so the provider does not redeliver;
//	@Description	per-event problems are reported in the summary.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	dto.WebhookResponse
//	@Failure		400	{object}	dto.Response
//	@Failure		413	{object}	dto.Response
//	@Router			/webhooks/whatsapp [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Failed to read request body")
		return
	}

	summary, err := h.processor.Handle(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, whatsapp.ErrMalformedPayload) {
			h.ErrorWithCode(c, dto.ErrCodeMalformedPayload, "Webhook payload is not valid JSON")
			return
		}
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Summary: summary})
}
