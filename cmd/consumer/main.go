package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/fitness/internal/config"
	"example.com/fitness/internal/consumer"
	"example.com/fitness/internal/logging"
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
	logger := logging.WithComponent("consumer")

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

	eventLog := consumer.NewEventLogHandler(pool)
	handler := consumer.HandlerFunc(func(ctx context.Context, msg consumer.Message) error {
		logger.Debug().
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Str("event_type", msg.EventType).
			Msg("event received")
		return eventLog.Handle(ctx, msg)
	})

	var wg sync.WaitGroup
	for _, topic := range cfg.Kafka.Topics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         cfg.Kafka.ConsumerGroup,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})
		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(logger.With().Str("topic", topic).Logger()))

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()

			logger.Info().Str("topic", topic).Str("group", cfg.Kafka.ConsumerGroup).Msg("consumer started")
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Str("topic", topic).Msg("consumer stopped with error")
			}
		}()
	}

	metrics := httptransport.NewMetricsServer(cfg.HTTP.MetricsAddress)
	if err := httptransport.Run(ctx, metrics, cfg.HTTP.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped with error")
		stop()
	}

	wg.Wait()
	logger.Info().Msg("consumer stopped")
}
