package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quikmart/internal/database"
	"quikmart/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		log.Info("Starting QuikMart API",
			zap.String("env", cfg.Server.Env),
			zap.String("port", cfg.Server.Port),
		)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()

		db, err := connectMongo(ctx, cfg, log)
		if err != nil {
			return err
		}

		if err := database.EnsureIndexes(ctx, db.DB(), log); err != nil {
			db.Close(context.Background())
			return err
		}

		redisClient, err := connectRedis(ctx, cfg, log)
		if err != nil {
			db.Close(context.Background())
			return err
		}

		srv, err := server.NewServer(cfg, log, db, redisClient)
		if err != nil {
			db.Close(context.Background())
			return err
		}

		// Create a done channel to signal when the shutdown is complete
		done := make(chan bool, 1)

		// Run graceful shutdown in a separate goroutine
		go gracefulShutdown(srv, cfg.Server.ShutdownTimeout, log, done)

		log.Info("Server listening", zap.String("addr", srv.Addr))

		err = srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}

		// Wait for the graceful shutdown to complete
		<-done
		log.Info("Graceful shutdown complete")
		return nil
	},
}

func gracefulShutdown(apiServer *server.Server, timeout time.Duration, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get timeout to finish
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}
