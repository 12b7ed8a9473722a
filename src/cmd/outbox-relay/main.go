package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"everypoll/src/helper/env"
	"everypoll/src/infra/kafka"
	"everypoll/src/infra/postgres"
	"everypoll/src/repositories"
	"everypoll/src/services/events"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Outbox Relay with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newKafkaClient,
			newOutboxRepository,
			newDomainEventPublisher,
			newOutboxRelay,
		),

		// Invocations
		fx.Invoke(startRelay),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start outbox relay: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down outbox relay...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Outbox relay shutdown complete")
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbReadHost := env.MustGetString("DB_READ_HOST")
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadPort := env.GetString("DB_READ_PORT", "5432")
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 5)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

// The relay only produces, so the client is built without a consumer group.
func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, "", batchSize)
}

func newOutboxRepository(readWriteClient *postgres.ReadWriteClient) *repositories.OutboxRepository {
	return repositories.NewOutboxRepository(readWriteClient.GetWritePool())
}

func newDomainEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.DomainEventPublisher {
	topic := env.GetString("KAFKA_POLL_EVENTS_TOPIC", "poll-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic)
}

func newOutboxRelay(
	logger *slog.Logger,
	outboxRepository *repositories.OutboxRepository,
	publisher *events.DomainEventPublisher,
) *events.OutboxRelay {
	interval := env.GetDuration("OUTBOX_RELAY_INTERVAL", 500*time.Millisecond)
	batchSize := env.GetInt("OUTBOX_RELAY_BATCH_SIZE", 100)

	return events.NewOutboxRelay(logger, outboxRepository, publisher, interval, batchSize)
}

func startRelay(
	lc fx.Lifecycle,
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	kafkaClient *kafka.KafkaClient,
	relay *events.OutboxRelay,
) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := relay.Run(runCtx); err != nil {
					logger.Error("Outbox relay failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Outbox relay did not stop in time")
			}

			readWriteClient.Close()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
