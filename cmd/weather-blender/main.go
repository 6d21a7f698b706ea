package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-blender/internal/api/http"
	"github.com/i474232898/weather-blender/internal/config"
	"github.com/i474232898/weather-blender/internal/scheduler"
	"github.com/i474232898/weather-blender/internal/sinks"
	"github.com/i474232898/weather-blender/internal/store"
	"github.com/i474232898/weather-blender/internal/weather"
)

func main() {
	// Load configuration (.env, environment, optional weather profile).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	blender, err := weather.NewBlender(cfg.Blender, rand.New(rand.NewSource(seed)))
	if err != nil {
		log.Fatalf("failed to initialize weather blender: %v", err)
	}

	// In-memory frame history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Sinks receiving the latest frame on every publish.
	var outs []weather.Sink
	if cfg.SinkURL != "" {
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
		outs = append(outs, sinks.NewHTTPSink(httpClient, cfg.SinkURL))
	}
	if cfg.LogFrames {
		outs = append(outs, sinks.NewLogSink(nil))
	}

	// The service is the single owner of the blender.
	service := weather.NewService(blender, memStore, outs)

	// Scheduler that ticks the blender and publishes frames.
	sched := scheduler.New(service, cfg.TickInterval, cfg.PublishInterval, cfg.TimeScale)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-blender",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-blender",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Printf("INFO: listening on :%s (tick %s, scale %.2f)", cfg.Port, cfg.TickInterval, cfg.TimeScale)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
