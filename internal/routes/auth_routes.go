package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
)

func AuthRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	a := api.Group("/auth")
	{
		// Open while no users exist; the controller enforces the rest.
		a.POST("/register", middleware.OptionalAuth(h.DB, h.Tokens), h.Register)
		a.POST("/login", h.Login)
		a.GET("/me", auth, h.Me)
	}
}

func HealthRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	api.GET("/health", h.Health)
	api.GET("/health/status", h.Health)
}
