package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/service/booking"
)

// IdempotencyHeader carries the client's deduplication key
const IdempotencyHeader = "Idempotency-Key"

// CreateTrip handles POST /v1/trips
func (h *Handlers) CreateTrip(c *gin.Context) {
	var req dto.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	t, replayed, err := h.Booking.BookTrip(c.Request.Context(), booking.TripInput{
		PassengerID:    req.PassengerID,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		Origin:         route.Normalize(req.Origin),
		Destination:    route.Normalize(req.Destination),
		Date:           req.Date,
		Seats:          req.Seats,
		PaymentMethod:  trip.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if replayed {
		c.Header("Idempotent-Replayed", "true")
		c.JSON(http.StatusOK, t)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTrip handles GET /v1/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Booking.GetTrip(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *Handlers) CompleteTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Booking.CompleteTrip(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *Handlers) CancelTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Booking.CancelTrip(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
