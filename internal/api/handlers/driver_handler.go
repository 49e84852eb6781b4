package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/service/roster"
)

// RegisterDriver handles POST /v1/drivers
func (h *Handlers) RegisterDriver(c *gin.Context) {
	var req dto.RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	d, err := h.Roster.Register(c.Request.Context(), roster.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		VehicleNumber:  req.VehicleNumber,
		VehicleModel:   req.VehicleModel,
		VehicleColor:   req.VehicleColor,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GetDriver handles GET /v1/drivers/:id
func (h *Handlers) GetDriver(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.Roster.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SetDriverRoute handles PUT /v1/drivers/:id/route
func (h *Handlers) SetDriverRoute(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	d, err := h.Roster.SetDefaultRoute(c.Request.Context(), id, toSegment(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AddDriverDate handles POST /v1/drivers/:id/dates
func (h *Handlers) AddDriverDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	var seg *route.Segment
	if req.Route != nil {
		s := toSegment(*req.Route)
		seg = &s
	}
	d, err := h.Roster.AddDate(c.Request.Context(), id, req.Date, seg)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RemoveDriverDate handles DELETE /v1/drivers/:id/dates/:date
func (h *Handlers) RemoveDriverDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.Roster.RemoveDate(c.Request.Context(), id, c.Param("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func toSegment(req dto.SegmentRequest) route.Segment {
	return route.Segment{
		Start: route.Normalize(req.Start),
		End:   route.Normalize(req.End),
		Time:  req.Time,
	}
}
