package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/service/assignment"
	"github.com/viagens-moz/intercity/internal/service/booking"
	"github.com/viagens-moz/intercity/internal/service/pricing"
	"github.com/viagens-moz/intercity/internal/service/report"
	"github.com/viagens-moz/intercity/internal/service/roster"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

// Services groups the application services the handlers call into
type Services struct {
	Pricing    *pricing.Service
	Roster     *roster.Service
	Booking    *booking.Service
	Assignment *assignment.Service
	Reports    *report.Service
}

// Options holds handler level settings
type Options struct {
	DefaultSharePercent float64
	WSReadBufferSize    int
	WSWriteBufferSize   int
}

// Handlers holds all handler dependencies
type Handlers struct {
	Services
	Hub     *websocket.Hub
	Logger  *logger.Logger
	Options Options
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, hub *websocket.Hub, logger *logger.Logger, opts Options) *Handlers {
	if opts.WSReadBufferSize == 0 {
		opts.WSReadBufferSize = 1024
	}
	if opts.WSWriteBufferSize == 0 {
		opts.WSWriteBufferSize = 1024
	}
	return &Handlers{
		Services: services,
		Hub:      hub,
		Logger:   logger,
		Options:  opts,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := gin.H{"status": "healthy"}
	if h.Hub != nil {
		resp["websocket_connections"] = h.Hub.GetActiveConnections()
		resp["websocket_clients"] = gin.H{
			websocket.UserTypeAdmin:     h.Hub.GetClientsByUserType(websocket.UserTypeAdmin),
			websocket.UserTypeDriver:    h.Hub.GetClientsByUserType(websocket.UserTypeDriver),
			websocket.UserTypePassenger: h.Hub.GetClientsByUserType(websocket.UserTypePassenger),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// pathID parses the :name path parameter as a UUID, answering 400 if it
// is malformed
func (h *Handlers) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.badRequest(c, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
