package database

import (
	"context"
	"fmt"
	"time"

	"quikmart/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	CartsCollection    = "carts"
	SessionsCollection = "sessions"
)

// Service owns the MongoDB client for the lifetime of the process
type Service struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a MongoDB client and verifies it with a ping
func Connect(ctx context.Context, cfg config.MongoConfig) (*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Service{client: client, db: client.Database(cfg.Database)}, nil
}

// NewFromClient wraps an existing client, used by tests
func NewFromClient(client *mongo.Client, database string) *Service {
	return &Service{client: client, db: client.Database(database)}
}

// DB returns the application database handle
func (s *Service) DB() *mongo.Database {
	return s.db
}

// Health reports connectivity in a form suitable for the health endpoint
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return map[string]string{
			"status": "down",
			"error":  err.Error(),
		}
	}

	return map[string]string{
		"status":  "up",
		"latency": time.Since(start).String(),
	}
}

// Close disconnects the client
func (s *Service) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}
