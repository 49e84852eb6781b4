package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/viagens-moz/intercity/internal/api/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	r.GET("/health", h.HealthCheck)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// WebSocket connection
		v1.GET("/ws", h.HandleWebSocket)

		v1.GET("/stops", h.GetStops)
		v1.GET("/fares", h.GetFare)

		// Passenger endpoints
		trips := v1.Group("/trips")
		{
			trips.POST("", h.CreateTrip)
			trips.GET("/:id", h.GetTrip)
			trips.POST("/:id/complete", h.CompleteTrip)
			trips.POST("/:id/cancel", h.CancelTrip)
		}

		parcels := v1.Group("/parcels")
		{
			parcels.POST("", h.CreateParcel)
			parcels.GET("/:id", h.GetParcel)
			parcels.POST("/:id/dispatch", h.DispatchParcel)
			parcels.POST("/:id/deliver", h.DeliverParcel)
		}

		// Driver endpoints
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", h.RegisterDriver)
			drivers.GET("/:id", h.GetDriver)
			drivers.PUT("/:id/route", h.SetDriverRoute)
			drivers.POST("/:id/dates", h.AddDriverDate)
			drivers.DELETE("/:id/dates/:date", h.RemoveDriverDate)
		}

		// Admin dashboard endpoints
		admin := v1.Group("/admin")
		{
			admin.GET("/drivers", h.ListDrivers)
			admin.POST("/drivers/:id/approval", h.SetDriverApproval)
			admin.POST("/drivers/:id/priority", h.SetDriverPriority)

			admin.POST("/trips/:id/confirm-payment", h.ConfirmTripPayment)
			admin.GET("/trips/:id/candidates", h.GetTripCandidates)
			admin.POST("/trips/:id/assign", h.AssignTripDriver)

			admin.GET("/parcels/:id/candidates", h.GetParcelCandidates)
			admin.POST("/parcels/:id/negotiate", h.NegotiateParcel)
			admin.POST("/parcels/:id/quote", h.QuoteParcel)
			admin.POST("/parcels/:id/confirm-payment", h.ConfirmParcelPayment)

			admin.GET("/reports/:month", h.GetMonthlyReport)
		}
	}
}
