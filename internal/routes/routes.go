package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler   *controllers.Handler
	Metrics   http.Handler    // served at /metrics when set
	AccessLog gin.HandlerFunc // optional request logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	if d.AccessLog != nil {
		r.Use(d.AccessLog)
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
	}))

	h := d.Handler
	auth := middleware.RequireAuth(h.DB, h.Tokens)

	api := r.Group("/api")
	HealthRoutes(api, h)
	AuthRoutes(api, h, auth)
	UserRoutes(api, h, auth)
	BusRoutes(api, h, auth)
	QueueRoutes(api, h, auth)
	TripRoutes(api, h, auth)
	TimeslotRoutes(api, h, auth)
	NoticeRoutes(api, h, auth)
	AttendanceRoutes(api, h, auth)
	ReportRoutes(api, h, auth)
	TerminalRoutes(api, h, auth)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r
}
