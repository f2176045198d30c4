package logger

import (
	"io"
	"os"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	logrus "github.com/sirupsen/logrus"
)

// Options controls where and how much we log.
type Options struct {
	File   string
	Level  string
	Stdout bool
}

// Setup initializes Logrus logging via a rotating file and returns the writer
// so the HTTP access log can share it.
func Setup(opts Options) io.Writer {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}

	var out io.Writer = rotator
	if opts.Stdout {
		out = io.MultiWriter(rotator, os.Stdout)
	}

	// 2) Configure Logrus to write to that file
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	return out
}

// AccessLog returns the request logging middleware. 4xx responses log at
// warn and 5xx at error. Health probes are skipped so they do not drown the
// file.
func AccessLog(w io.Writer) gin.HandlerFunc {
	return ginlog.SetLogger(
		ginlog.WithWriter(w),
		ginlog.WithUTC(true),
		ginlog.WithDefaultLevel(zerolog.InfoLevel),
		ginlog.WithClientErrorLevel(zerolog.WarnLevel),
		ginlog.WithServerErrorLevel(zerolog.ErrorLevel),
		ginlog.WithSkipPath([]string{"/api/health", "/api/health/status", "/metrics"}),
	)
}
