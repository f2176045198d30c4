package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

func UserRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	users := api.Group("/users")
	users.Use(auth, middleware.RequireRoles(models.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}
