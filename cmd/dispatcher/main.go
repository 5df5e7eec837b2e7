package main

import (
	"context"
	"os/signal"
	"syscall"

	"example.com/fitness/internal/config"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/outbox"
	"example.com/fitness/internal/persistence/postgres"
	httptransport "example.com/fitness/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})
	logger := logging.WithComponent("dispatcher")

	if cfg.Postgres.URL == "" {
		logger.Fatal().Msg("postgres.url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	producer := outbox.NewKafkaProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.Kafka.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	go dispatcher.Start(ctx)

	manager := outbox.NewDLQManager(pool, cfg.DLQ.MaxRetries, cfg.DLQ.BaseDelay)
	dlqDone := make(chan struct{})
	go func() {
		defer close(dlqDone)
		manager.Run(ctx, cfg.DLQ.PollInterval, cfg.DLQ.BatchSize)
	}()

	logger.Info().
		Dur("poll_interval", cfg.Outbox.PollInterval).
		Int("batch_size", cfg.Outbox.BatchSize).
		Dur("dlq_interval", cfg.DLQ.PollInterval).
		Int("dlq_max_retries", cfg.DLQ.MaxRetries).
		Msg("outbox dispatcher started")

	metrics := httptransport.NewMetricsServer(cfg.HTTP.MetricsAddress)
	if err := httptransport.Run(ctx, metrics, cfg.HTTP.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped with error")
		stop()
	}

	dispatcher.Wait()
	<-dlqDone
	logger.Info().Msg("outbox dispatcher stopped")
}
