package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/service/booking"
)

// CreateParcel handles POST /v1/parcels
func (h *Handlers) CreateParcel(c *gin.Context) {
	var req dto.CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	p, replayed, err := h.Booking.RequestParcel(c.Request.Context(), booking.ParcelInput{
		SenderID:       req.SenderID,
		SenderName:     req.SenderName,
		SenderPhone:    req.SenderPhone,
		Origin:         route.Normalize(req.Origin),
		Destination:    route.Normalize(req.Destination),
		Size:           parcel.Size(req.Size),
		Type:           req.Type,
		Description:    req.Description,
		IdempotencyKey: c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if replayed {
		c.Header("Idempotent-Replayed", "true")
		c.JSON(http.StatusOK, p)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetParcel handles GET /v1/parcels/:id
func (h *Handlers) GetParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Booking.GetParcel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DispatchParcel handles POST /v1/parcels/:id/dispatch
func (h *Handlers) DispatchParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Booking.DispatchParcel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeliverParcel handles POST /v1/parcels/:id/deliver
func (h *Handlers) DeliverParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Booking.DeliverParcel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
