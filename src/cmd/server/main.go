package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	httpadapter "everypoll/src/adapters/http"
	"everypoll/src/helper/env"
	"everypoll/src/infra/postgres"
	"everypoll/src/infra/redis"
	"everypoll/src/repositories"
	"everypoll/src/services/polls"

	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting poll API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newPollQueryRepository,
			newCachedPollQueryRepository,
			newPollWriteRepository,
			newVoteLedgerRepository,
			newRelationshipRepository,
			newPollService,
			newServer,
		),

		// Invocations
		fx.Invoke(migrateSchema),
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
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

func newReadWriteClient(lc fx.Lifecycle) (*postgres.ReadWriteClient, error) {
	dbReadHost := env.MustGetString("DB_READ_HOST")
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadPort := env.GetString("DB_READ_PORT", "5432")
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	client, err := postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})

	return client, nil
}

// newRedisClient returns nil when REDIS_HOSTS is unset; the list cache then
// passes every call through to PostgreSQL.
func newRedisClient(lc fx.Lifecycle) *redis.RedisClient {
	redisHosts := env.GetString("REDIS_HOSTS", "")
	if redisHosts == "" {
		log.Println("REDIS_HOSTS not set, list cache disabled")
		return nil
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTLSeconds := env.GetInt("REDIS_DEFAULT_TTL_SECONDS", 120)
	redisDefaultTTL := time.Duration(redisDefaultTTLSeconds) * time.Second

	client := redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}

func newPollQueryRepository(readWriteClient *postgres.ReadWriteClient) *repositories.PollQueryRepository {
	return repositories.NewPollQueryRepository(readWriteClient.GetReadPool(), readWriteClient.GetWritePool())
}

func newCachedPollQueryRepository(
	pollQueryRepository *repositories.PollQueryRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedPollQueryRepository {
	return repositories.NewCachedPollQueryRepository(pollQueryRepository, redisClient)
}

func newPollWriteRepository(readWriteClient *postgres.ReadWriteClient) *repositories.PollWriteRepository {
	return repositories.NewPollWriteRepository(readWriteClient.GetWritePool())
}

func newVoteLedgerRepository(readWriteClient *postgres.ReadWriteClient) *repositories.VoteLedgerRepository {
	return repositories.NewVoteLedgerRepository(readWriteClient.GetWritePool())
}

// Edges are read from the primary so an attach is visible on the next detail read.
func newRelationshipRepository(readWriteClient *postgres.ReadWriteClient) *repositories.RelationshipRepository {
	return repositories.NewRelationshipRepository(readWriteClient.GetWritePool())
}

func newPollService(
	logger *slog.Logger,
	pollWriteRepository *repositories.PollWriteRepository,
	cachedPollQueryRepository *repositories.CachedPollQueryRepository,
	voteLedgerRepository *repositories.VoteLedgerRepository,
	relationshipRepository *repositories.RelationshipRepository,
) *polls.PollService {
	return polls.NewPollService(logger, pollWriteRepository, cachedPollQueryRepository, voteLedgerRepository, relationshipRepository)
}

func newServer(
	logger *slog.Logger,
	pollService *polls.PollService,
	readWriteClient *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
) (*httpadapter.Server, error) {
	port, err := env.GetPort("SERVER_PORT", 8888)
	if err != nil {
		return nil, err
	}

	healthChecks := map[string]httpadapter.HealthCheck{
		"postgres": readWriteClient.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.HealthCheck
	}

	identity := httpadapter.HeaderIdentityResolver(env.GetString("IDENTITY_HEADER", httpadapter.DefaultIdentityHeader))

	return httpadapter.NewServer(logger, port, pollService, identity, healthChecks), nil
}

func migrateSchema(lc fx.Lifecycle, logger *slog.Logger, readWriteClient *postgres.ReadWriteClient) {
	if !env.GetBool("DB_AUTO_MIGRATE", false) {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Applying database schema")
			return postgres.CreateSchema(ctx, readWriteClient.GetWritePool())
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}
