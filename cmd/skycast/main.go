package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/skycast-app/skycast/internal/api/http"
	"github.com/skycast-app/skycast/internal/config"
	"github.com/skycast-app/skycast/internal/logger"
	"github.com/skycast-app/skycast/internal/scheduler"
	"github.com/skycast-app/skycast/internal/store"
	"github.com/skycast-app/skycast/internal/weather"
	"github.com/skycast-app/skycast/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := logger.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable local state.
	cache, err := store.NewFileCache(filepath.Join(cfg.DataDir, "forecasts"), slogger)
	if err != nil {
		log.Fatalf("failed to open forecast cache: %v", err)
	}
	places, err := store.NewPlaceStore(cfg.PlacesPath, slogger)
	if err != nil {
		log.Fatalf("failed to open place store: %v", err)
	}
	prefs, err := store.NewPrefStore(cfg.PrefsPath, store.DefaultUnits, slogger)
	if err != nil {
		log.Fatalf("failed to open preferences: %v", err)
	}

	// Providers with resilience (backoff + circuit breaker + rate limits).
	client := providers.NewOpenMeteo(httpClient)

	var geo weather.Geocoder = providers.NewNominatim(httpClient, cfg.UserAgent)
	if g := providers.NewGoogleGeocoder(cfg.GeocoderAPIKey); g != nil {
		geo = g
	}

	// Core service orchestrating fetch, merge, and offline cache.
	service := weather.NewService(client, cache, prefs, slogger, weather.ServiceOptions{
		FetchTimeout: cfg.FetchTimeout,
		ForecastDays: cfg.ForecastDays,
	})

	// Background warm refresh of the front saved place.
	sched := scheduler.New(places, cfg.RefreshInterval, service, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "skycast",
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

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skycast",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:  service,
		Geocoder: geo,
		Places:   places,
		Prefs:    prefs,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("server stopped", "error", err)
		}
	}()
	slogger.Info("listening", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}
