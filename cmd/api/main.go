package main

import (
	"context"
	"fmt"
	"os"

	"quikmart/internal/config"
	"quikmart/internal/database"
	"quikmart/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quikmart",
	Short: "QuikMart storefront API",
	// Running the binary without a subcommand starts the server
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(indexesCmd)
}

// bootstrap loads configuration and builds the logger every command uses
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func connectMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*database.Service, error) {
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info("Database health check", zap.Any("health", db.Health(ctx)))
	return db, nil
}

// connectRedis returns nil when nothing needs Redis. The rate limiter fails
// open, so an unreachable Redis is only fatal for the redis session store.
func connectRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	needed := cfg.Session.Store == config.SessionStoreRedis
	if !needed && !cfg.RateLimit.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		if needed {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Warn("Redis unreachable, rate limiting will let requests through", zap.Error(err))
	}
	return client, nil
}
