package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adaptix/adaptix/internal/cache"
	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/enricher"
	"github.com/adaptix/adaptix/internal/handler"
	"github.com/adaptix/adaptix/internal/orchestrator"
	"github.com/adaptix/adaptix/internal/storage"
	"github.com/adaptix/adaptix/internal/telemetry"
	"github.com/adaptix/adaptix/internal/validation"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/optimizer.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}

	log.Info().Msg("Starting Adaptix optimizer...")

	// Redis is optional; without it the profile cache and site-key
	// validation are disabled.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, profile cache disabled")
			rdb = nil
		} else {
			defer rdb.Close()
			log.Info().Msg("Connected to Redis")
		}
	}

	// Site-key validation requires both Postgres and Redis.
	var validator *validation.Validator
	if cfg.Postgres.DSN != "" && rdb != nil {
		validator, err = validation.NewValidator(cfg.Postgres, cfg.Redis, cfg.RateLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create validator, running open")
		} else {
			defer validator.Close()
			log.Info().Msg("Site-key validator initialized")
		}
	} else {
		log.Warn().Msg("No Postgres DSN configured, running open")
	}

	// ClickHouse analytics sink is optional.
	var sink *storage.Sink
	if cfg.ClickHouse.Addr != "" {
		ch, err := storage.NewClickHouse(cfg.ClickHouse)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to ClickHouse, analytics disabled")
		} else {
			defer ch.Close()
			sink = storage.NewSink(ch, cfg.Telemetry.FlushInterval)
			log.Info().Msg("Connected to ClickHouse")
		}
	}

	publisher := telemetry.NewPublisher(cfg.Kafka, cfg.Telemetry)

	requestEnricher := enricher.NewEnricher(cfg.GeoIP.DatabasePath)
	defer requestEnricher.Close()

	registry := handler.NewRegistry(func(id string) *orchestrator.Session {
		return orchestrator.NewSession(id, orchestrator.New(cfg.Scoring), cfg.Session.UpdateInterval)
	}, cfg.Session.IdleTimeout)

	httpHandler := handler.NewHTTPHandler(
		registry,
		validator,
		requestEnricher,
		cache.NewProfileCache(rdb, cfg.Cache.ProfileTTL),
		publisher,
		sink,
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(handler.CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Post("/v1/optimize", httpHandler.HandleOptimize)
	r.Post("/v1/outcomes", httpHandler.HandleOutcome)
	r.Get("/v1/profiles/{sessionID}", httpHandler.HandleGetProfile)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Info().Int("port", cfg.Server.HTTPPort).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	httpServer.Shutdown(context.Background())
	registry.Close()
	publisher.Close()
	sink.Close()
	log.Info().Msg("Shutdown complete")
}
