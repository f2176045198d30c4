package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

func ReportRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	reports := api.Group("/reports")
	reports.Use(auth)
	{
		reports.GET("/trips", middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary), h.TripsReport)
		reports.GET("/earnings", middleware.RequireRoles(models.RoleAdmin, models.RoleOwner), h.EarningsReport)
		reports.GET("/fuel", middleware.RequireRoles(models.RoleAdmin), h.FuelReport)
	}
}

func TerminalRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	terminals := api.Group("/terminals")
	terminals.Use(auth)
	{
		terminals.GET("", h.ListTerminals)
		terminals.GET("/:id", h.GetTerminal)
		terminals.POST("", middleware.RequireRoles(models.RoleAdmin), h.CreateTerminal)
	}
}
