package handler

import (
	"context"

	appnotification "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrderLifecycle drives status changes and order-created announcements
type OrderLifecycle interface {
	UpdateStatus(ctx context.Context, orderID, rawStatus string) (*appnotification.StatusChangeResult, error)
	NotifyOrderCreated(ctx context.Context, orderID string) (*appnotification.OrderCreatedResult, error)
}

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderLifecycle
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderLifecycle) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// UpdateStatus godoc
//
//	@Summary		Move an order to a new status and notify the customer
//	@Description	The transition is kept even when the notification fails; the
//	@Description	notification outcome is reported in the response.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Order ID"
//	@Param			request	body		dto.UpdateOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	dto.Response{data=dto.OrderStatusResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/api/v1/orders/{id}/status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderStatusResponse(result))
}

// NotifyCreated godoc
//
//	@Summary		Announce a new order to the customer and the store
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	dto.Response{data=dto.OrderCreatedResponse}
//	@Failure		404	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/api/v1/orders/{id}/created [post]
func (h *OrderHandler) NotifyCreated(c *gin.Context) {
	result, err := h.orders.NotifyOrderCreated(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderCreatedResponse(result))
}
