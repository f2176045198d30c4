package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Health reports liveness plus a database ping.
func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	body := gin.H{
		"timestamp":   now.UTC().Format(time.RFC3339),
		"uptime":      now.Sub(h.started).Seconds(),
		"environment": h.Config.AppEnv,
		"version":     h.Config.AppVersion,
	}

	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logrus.WithError(err).Warn("health: database ping failed")
		body["status"] = "ERROR"
		body["message"] = "Server is experiencing issues"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "OK"
	body["message"] = "Server is running"
	c.JSON(http.StatusOK, body)
}
