package main

import (
	"context"
	"os/signal"
	"syscall"

	"example.com/fitness/internal/api"
	"example.com/fitness/internal/auth"
	"example.com/fitness/internal/config"
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/persistence/memory"
	"example.com/fitness/internal/persistence/postgres"
	"example.com/fitness/internal/persistence/resilient"
	"example.com/fitness/internal/stats"
	httptransport "example.com/fitness/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})
	logger := logging.WithComponent("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store domain.Store
	if cfg.Postgres.URL == "" {
		logger.Warn().Msg("postgres.url is empty, serving the seeded in-memory store")
		store = memory.NewSeededStore()
	} else {
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	}

	store = resilient.Wrap(store, resilient.Settings{
		Name:             "fitness-store",
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
		HalfOpenRequests: cfg.Breaker.HalfOpenRequests,
	})
	service := domain.NewService(store, stats.SystemClock{Location: cfg.Location()})

	router := api.NewRouter(api.NewHandler(service),
		auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.JWTIssuer},
		api.MiddlewareConfig{
			CORSOrigins:       cfg.Security.CORSOrigins,
			RateLimitRequests: cfg.Security.RateLimitRequests,
			RateLimitWindow:   cfg.Security.RateLimitWindow,
		})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTP.Address,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router)

	if err := httptransport.Run(ctx, server, cfg.HTTP.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("http server stopped with error")
	}
}
