package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// GetStops handles GET /v1/stops
func (h *Handlers) GetStops(c *gin.Context) {
	stops := h.Pricing.Line().Stops()
	resp := dto.StopsResponse{Stops: make([]string, 0, len(stops))}
	for _, stop := range stops {
		resp.Stops = append(resp.Stops, string(stop))
	}
	c.JSON(http.StatusOK, resp)
}

// GetFare handles GET /v1/fares?origin=&destination=&seats=
func (h *Handlers) GetFare(c *gin.Context) {
	origin := route.Normalize(c.Query("origin"))
	destination := route.Normalize(c.Query("destination"))

	seats := 1
	if raw := c.Query("seats"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.badRequest(c, "seats must be a positive integer", err)
			return
		}
		seats = n
	}

	perSeat, total, err := h.Booking.QuoteTrip(origin, destination, seats)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FareResponse{
		Origin:      string(origin),
		Destination: string(destination),
		Seats:       seats,
		PerSeat:     perSeat,
		Total:       total,
	})
}
