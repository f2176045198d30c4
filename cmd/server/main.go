package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/dispatch"
	"bus_dispatch/internal/events"
	"bus_dispatch/internal/logger"
	"bus_dispatch/internal/metrics"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/routes"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("server exited")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, port string
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "path to a .env file (missing is fine)")
	flagSet.StringVar(&port, "port", "", "listen port (overrides PORT)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	// Structured logging to a rotating file
	logOut := logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Stdout: cfg.LogStdout})
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	collector := metrics.NewCollector()
	opts := []dispatch.Option{
		dispatch.WithLocation(cfg.Location),
		dispatch.WithMetrics(collector),
	}
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			// Events are best effort; dispatching must not depend on the broker.
			logrus.WithError(err).WithField("url", cfg.NATSURL).Warn("nats unavailable, domain events disabled")
		} else {
			defer pub.Close()
			opts = append(opts, dispatch.WithPublisher(pub))
		}
	}
	coord := dispatch.New(db, opts...)

	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	h := controllers.NewHandler(db, coord, tokens, cfg)
	r := routes.SetupRouter(routes.Deps{
		Handler:   h,
		Metrics:   collector.Handler(),
		AccessLog: logger.AccessLog(logOut),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.EnableCORS(r, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.AppEnv, "db": cfg.Database.Driver}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logrus.Info("Server stopped")
	return nil
}
