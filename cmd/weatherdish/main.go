package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kelvins/geocoder"

	httpapi "github.com/yunseo-dev/weatherdish/internal/api/http"
	"github.com/yunseo-dev/weatherdish/internal/config"
	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/prefetch"
	"github.com/yunseo-dev/weatherdish/internal/recommend"
	"github.com/yunseo-dev/weatherdish/internal/scheduler"
	"github.com/yunseo-dev/weatherdish/internal/store"
	"github.com/yunseo-dev/weatherdish/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := log.Init(cfg.Debug); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	if cfg.GeocoderAPIKey != "" {
		geocoder.ApiKey = cfg.GeocoderAPIKey
	}

	// Shared HTTP client for outbound KMA calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// File-backed weather cache; the store owns the cache file.
	fileStore := store.NewFileStore(cfg.CacheFile)

	client := weather.NewClient(httpClient, cfg.KMAServiceKey)
	service := weather.NewService(fileStore, client)

	scorer, err := recommend.LoadScorer(cfg.ModelsFile)
	if err != nil {
		log.Fatalf("failed to load scoring models: %v", err)
	}

	// Scheduler that keeps the cache warm ahead of user traffic.
	prefetcher := prefetch.New(fileStore, client, cfg.PrefetchDays)
	sched := scheduler.New(prefetcher, cfg.PrefetchInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherdish",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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
	app.Use(httpapi.RequestID())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherdish",
		})
	})

	server := httpapi.NewServer(service, scorer, cfg.GeocoderAPIKey != "")
	httpapi.RegisterRoutes(app, server)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
