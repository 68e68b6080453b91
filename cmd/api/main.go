package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/app"
	"kodkariyer/ats-engine/internal/config"
	"kodkariyer/ats-engine/internal/handlers"
	"kodkariyer/ats-engine/internal/logger"
	"kodkariyer/ats-engine/internal/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	if cfg.Database.AutoMigrate {
		if err := config.Migrate(container.DB, log); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	worker := container.NewWorker()
	worker.Start(ctx)

	scoreHandler := handlers.NewScoreHandler(container.Applications, container.Scores, container.ATS, worker, log)
	recalculateHandler := handlers.NewRecalculateHandler(container.Batch, cfg.Scoring.BatchSize, log)

	server := fiber.New(fiber.Config{
		AppName:      "ATS Scoring Engine",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		ErrorHandler: customErrorHandler,
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.Register(server, scoreHandler, recalculateHandler)

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Scoring Engine",
			"version": app.Version,
			"endpoints": []string{
				"POST /api/v1/applications/:id/score",
				"GET /api/v1/applications/:id/score",
				"POST /api/v1/jobs/:id/recalculate",
				"GET /metrics",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		cancel()
		if err := server.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := server.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
