package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/config"
	"bus_dispatch/internal/dispatch"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

// Handler carries the dependencies shared by every controller.
type Handler struct {
	DB       *gorm.DB
	Dispatch *dispatch.Coordinator
	Tokens   *middleware.TokenIssuer
	Config   *config.Config

	now     func() time.Time
	started time.Time
}

func NewHandler(db *gorm.DB, coord *dispatch.Coordinator, tokens *middleware.TokenIssuer, cfg *config.Config) *Handler {
	return &Handler{
		DB:       db,
		Dispatch: coord,
		Tokens:   tokens,
		Config:   cfg,
		now:      time.Now,
		started:  time.Now(),
	}
}

// respondError writes err as {"message": ...}. Server errors are logged and
// replaced by a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := "Server error"
	var e *apperr.Error
	if errors.As(err, &e) && kind != apperr.KindServer {
		msg = e.Message
	}
	if kind == apperr.KindServer {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	c.JSON(kind.HTTPStatus(), gin.H{"message": msg})
}

// bindJSON decodes the body and answers 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

func caller(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func (h *Handler) db(c *gin.Context) *gorm.DB {
	return h.DB.WithContext(c.Request.Context())
}
