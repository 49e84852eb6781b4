package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/pkg/logger"
)

// ListDrivers handles GET /v1/admin/drivers
func (h *Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.Roster.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(drivers), "drivers": drivers})
}

// SetDriverApproval handles POST /v1/admin/drivers/:id/approval
func (h *Handlers) SetDriverApproval(c *gin.Context) {
	h.setDriverFlag(c, "approval")
}

// SetDriverPriority handles POST /v1/admin/drivers/:id/priority
func (h *Handlers) SetDriverPriority(c *gin.Context) {
	h.setDriverFlag(c, "priority")
}

func (h *Handlers) setDriverFlag(c *gin.Context, flag string) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	var (
		d   *driver.Driver
		err error
	)
	if flag == "approval" {
		d, err = h.Roster.SetApproval(c.Request.Context(), id, *req.Value)
	} else {
		d, err = h.Roster.SetPriority(c.Request.Context(), id, *req.Value)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ConfirmTripPayment handles POST /v1/admin/trips/:id/confirm-payment
func (h *Handlers) ConfirmTripPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Assignment.ConfirmTripPayment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetTripCandidates handles GET /v1/admin/trips/:id/candidates
func (h *Handlers) GetTripCandidates(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	drivers, err := h.Assignment.TripCandidates(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCandidatesResponse(drivers))
}

// AssignTripDriver handles POST /v1/admin/trips/:id/assign
func (h *Handlers) AssignTripDriver(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		h.badRequest(c, "Invalid driver_id", err)
		return
	}

	t, err := h.Assignment.AssignTrip(c.Request.Context(), id, driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetParcelCandidates handles GET /v1/admin/parcels/:id/candidates
func (h *Handlers) GetParcelCandidates(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	drivers, err := h.Assignment.PackageCandidates(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCandidatesResponse(drivers))
}

// NegotiateParcel handles POST /v1/admin/parcels/:id/negotiate
func (h *Handlers) NegotiateParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Assignment.MarkNegotiating(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// QuoteParcel handles POST /v1/admin/parcels/:id/quote
func (h *Handlers) QuoteParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.QuoteParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		h.badRequest(c, "Invalid driver_id", err)
		return
	}

	p, err := h.Assignment.QuotePackage(c.Request.Context(), id, req.Price, driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ConfirmParcelPayment handles POST /v1/admin/parcels/:id/confirm-payment
func (h *Handlers) ConfirmParcelPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Assignment.ConfirmPackagePayment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetMonthlyReport handles GET /v1/admin/reports/:month?share=15
func (h *Handlers) GetMonthlyReport(c *gin.Context) {
	share := h.Options.DefaultSharePercent
	if raw := c.Query("share"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.badRequest(c, "share must be a number", err)
			return
		}
		share = v
	}

	r, err := h.Reports.Monthly(c.Request.Context(), c.Param("month"), share)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Logger.Debug("Report served", logger.String("month", r.Month))
	c.JSON(http.StatusOK, r)
}
