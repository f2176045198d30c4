package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

func QueueRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	operators := middleware.RequireRoles(models.RoleAdmin, models.RoleStarter)

	queues := api.Group("/queues")
	queues.Use(auth)
	{
		queues.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary, models.RoleStarter), h.ListQueues)
		queues.POST("", operators, h.EnqueueBus)
		queues.PUT("/:id/depart", operators, h.MarkDeparted)
		queues.DELETE("/:id", operators, h.RemoveFromQueue)
	}
}

func TripRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	trips := api.Group("/trips")
	trips.Use(auth, middleware.RequireRoles(models.RoleAdmin, models.RoleStarter))
	{
		trips.POST("/start", h.StartTrip)
		trips.POST("/end/:tripId", h.EndTrip)
		trips.GET("/station/:stationId", h.StationTrips)
		trips.GET("/reports/daily/:stationId/:date", h.DailyStationReport)
		trips.GET("/date/:date", h.TripsByDate)
		trips.GET("/:tripId", h.GetTrip)
	}
}
