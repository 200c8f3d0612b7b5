package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/logging"
	"foodgram/internal/server"
	"foodgram/internal/storage"
	"foodgram/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Migrate the database and serve the API until SIGINT or SIGTERM.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	media, err := newMediaBackend(ctx, cfg)
	if err != nil {
		return err
	}
	deps := server.Deps{Config: cfg, DB: db, Media: media}

	// Events are best-effort: without a broker the API still serves.
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logging.Warn().Err(err).Msg("RabbitMQ unavailable, domain events disabled")
		} else {
			defer mqClient.Close()
			deps.Events = mqClient
			consumeEvents(mqClient)
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Warn().Err(err).Msg("Redis ping failed, rate limiter will fail open until it recovers")
		}
		deps.Redis = redisClient
	}

	app := server.NewApp(deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.AppPort).Msg("starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logging.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	logging.Info().Msg("server gracefully stopped")
	return nil
}

// consumeEvents logs every domain event from the queue in the background. It is
// the hook point for notification workers.
func consumeEvents(client *rabbitmq.Client) {
	log := logging.With().Str("component", "event_consumer").Logger()
	log.Info().Msg("starting RabbitMQ consumer")

	handler := func(event rabbitmq.Event) error {
		log.Info().
			Str("event", event.Name).
			Time("occurred_at", event.OccurredAt).
			Interface("payload", event.Payload).
			Msg("domain event received")
		return nil
	}
	onError := func(err error) {
		log.Warn().Err(err).Msg("failed to handle domain event")
	}
	if err := client.ConsumeEvents(handler, onError); err != nil {
		log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
	}
}

func newMediaBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.MediaBackend {
	case "s3":
		return storage.NewS3Backend(ctx, cfg.S3Bucket, cfg.AWSRegion)
	default:
		return storage.NewLocalBackend(cfg.MediaRoot, cfg.MediaURL), nil
	}
}
