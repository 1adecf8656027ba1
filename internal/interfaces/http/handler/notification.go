package handler

import (
	"context"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationDispatcher renders and sends one order notification
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, req notification.OrderNotificationRequest) notification.DispatchResult
}

// NotificationHandler handles direct notification requests from the storefront
type NotificationHandler struct {
	BaseHandler
	dispatcher NotificationDispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(dispatcher NotificationDispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// SendOrderNotification godoc
//
//	@Summary		Send an order notification
//	@Tags			notifications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.OrderNotificationRequest	true	"Order snapshot"
//	@Success		200		{object}	dto.Response{data=dto.DispatchResultResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		502		{object}	dto.Response
//	@Router			/api/v1/notifications/orders [post]
func (h *NotificationHandler) SendOrderNotification(c *gin.Context) {
	var req dto.OrderNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result := h.dispatcher.Dispatch(c.Request.Context(), req.ToDomain())
	if !result.Success {
		h.DispatchFailure(c, result)
		return
	}
	h.Success(c, dto.NewDispatchResultResponse(result))
}
