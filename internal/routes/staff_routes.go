package routes

import (
	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

func TimeslotRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	slots := api.Group("/timeslots")
	slots.Use(auth, middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary))
	{
		slots.GET("", h.ListTimeslots)
		slots.POST("", h.CreateTimeslot)
		slots.PUT("/:id", h.UpdateTimeslot)
		slots.DELETE("/:id", h.DeleteTimeslot)
	}
}

func NoticeRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	notices := api.Group("/notices")
	notices.Use(auth)
	{
		notices.GET("", h.ListNotices)
		notices.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary), h.CreateNotice)
		notices.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.DeleteNotice)
	}
}

func AttendanceRoutes(api *gin.RouterGroup, h *controllers.Handler, auth gin.HandlerFunc) {
	att := api.Group("/staff/attendance")
	att.Use(auth)
	{
		att.POST("", middleware.RequireRoles(models.RoleDriver, models.RoleConductor), h.MarkAttendance)
		att.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary), h.AttendanceLogs)
		att.GET("/me", h.MyPunches)
		att.POST("/punch", middleware.RequireRoles(models.RoleStarter, models.RoleAdmin), h.Punch)
	}
}
