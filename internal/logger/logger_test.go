package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupParsesLevel(t *testing.T) {
	Setup(Options{File: filepath.Join(t.TempDir(), "app.log"), Level: "warn"})
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())

	Setup(Options{File: filepath.Join(t.TempDir(), "app.log"), Level: "nonsense"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestAccessLogSkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(AccessLog(&buf))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/buses", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Empty(t, buf.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/buses", nil))
	assert.Contains(t, buf.String(), "/api/buses")
}
