package handler

import (
	"context"
	"strconv"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// maxDeliveryListLimit caps ?limit= on the intervention list
const maxDeliveryListLimit = 200

// DeliveryReader exposes tracked delivery state
type DeliveryReader interface {
	Get(ctx context.Context, providerMessageID string) (*notification.DeliveryRecord, error)
	ListRequiringIntervention(ctx context.Context, limit int) ([]notification.DeliveryRecord, error)
}

// DeliveryHandler lets support staff inspect outbound message delivery
type DeliveryHandler struct {
	BaseHandler
	deliveries DeliveryReader
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveries DeliveryReader) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

// Get godoc
//
//	@Summary		Get the delivery state of one message
//	@Tags			deliveries
//	@Produce		json
//	@Security		BearerAuth
//	@Param			message_id	path		string	true	"Provider message ID"
//	@Success		200			{object}	dto.Response{data=dto.DeliveryRecordResponse}
//	@Failure		404			{object}	dto.Response
//	@Router			/api/v1/deliveries/{message_id} [get]
func (h *DeliveryHandler) Get(c *gin.Context) {
	record, err := h.deliveries.Get(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDeliveryRecordResponse(record, whatsapp.MaskPhone))
}

// ListRequiringIntervention godoc
//
//	@Summary		List failed deliveries that need a person to follow up
//	@Tags			deliveries
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum records (default 50, max 200)"
//	@Success		200		{object}	dto.Response{data=[]dto.DeliveryRecordResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/api/v1/deliveries [get]
func (h *DeliveryHandler) ListRequiringIntervention(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDeliveryListLimit {
			h.BadRequest(c, "limit must be between 1 and "+strconv.Itoa(maxDeliveryListLimit))
			return
		}
		limit = n
	}

	records, err := h.deliveries.ListRequiringIntervention(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.DeliveryRecordResponse, len(records))
	for i := range records {
		out[i] = dto.NewDeliveryRecordResponse(&records[i], whatsapp.MaskPhone)
	}
	h.Success(c, out)
}
