package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

func BusRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	roles := middleware.RequireRoles

	buses := api.Group("/buses")
	buses.Use(auth)
	{
		buses.GET("", h.ListBuses)
		buses.GET("/available", roles(models.RoleAdmin, models.RoleStarter), h.AvailableBuses)
		buses.GET("/:id", h.GetBus)
		buses.GET("/:id/daily/:date", roles(models.RoleAdmin, models.RoleOwner, models.RoleStarter), h.BusDailyTotals)
		buses.PUT("/:id/status", roles(models.RoleAdmin, models.RoleStarter), h.UpdateBusStatus)
		buses.POST("", roles(models.RoleAdmin, models.RoleOwner), h.CreateBus)
		buses.PUT("/:id", roles(models.RoleAdmin, models.RoleOwner), h.UpdateBus)
		buses.DELETE("/:id", roles(models.RoleAdmin), h.DeleteBus)
	}
}
