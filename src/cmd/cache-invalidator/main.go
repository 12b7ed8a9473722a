package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"everypoll/src/adapters/kafka/consumers"
	"everypoll/src/helper/env"
	"everypoll/src/infra/kafka"
	"everypoll/src/infra/redis"
	"everypoll/src/repositories"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Cache Invalidator with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newRedisClient,
			newKafkaClient,
			newCachedPollQueryRepository,
			newCacheInvalidationConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down cache invalidator...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Cache invalidator shutdown complete")
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

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTLSeconds := env.GetInt("REDIS_DEFAULT_TTL_SECONDS", 120)
	redisDefaultTTL := time.Duration(redisDefaultTTLSeconds) * time.Second

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_CACHE_INVALIDATOR_GROUP_ID")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

// Invalidation never reads PostgreSQL, so the query repository is left nil.
func newCachedPollQueryRepository(
	redisClient *redis.RedisClient,
) *repositories.CachedPollQueryRepository {
	return repositories.NewCachedPollQueryRepository(nil, redisClient)
}

func newCacheInvalidationConsumer(
	logger *slog.Logger,
	cachedPollQueryRepository *repositories.CachedPollQueryRepository,
) *consumers.CacheInvalidationConsumer {
	return consumers.NewCacheInvalidationConsumer(logger, cachedPollQueryRepository)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	redisClient *redis.RedisClient,
	invalidationConsumer *consumers.CacheInvalidationConsumer,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			topic := env.GetString("KAFKA_POLL_EVENTS_TOPIC", "poll-events")
			logger.Info("Starting cache invalidation consumer", "topic", topic)

			// Start consumer in background
			go func() {
				if err := invalidationConsumer.Start(runCtx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			logger.Info("Kafka client shut down gracefully")
			return redisClient.Close()
		},
	})
}
