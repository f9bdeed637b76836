package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/app"
	"pdao-records/internal/config"
	"pdao-records/internal/handler"
	"pdao-records/internal/middleware"
	pkglogger "pdao-records/internal/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	pkglogger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	a, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	if cfg.SchedulerEnabled {
		go func() {
			defer close(schedulerDone)
			a.Scheduler().Start(ctx)
		}()
	} else {
		close(schedulerDone)
	}

	server := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
	}))

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handler.SetupRoutes(server, handler.NewHandlers(a.Services, cfg.Now), cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("server starting")
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
		stop()
	}
	<-schedulerDone
}
