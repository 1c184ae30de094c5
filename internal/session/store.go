// Package session keeps authentication state on the server. The browser only
// holds a signed cookie naming a session id; the id resolves to a record in
// MongoDB or Redis.
package session

import (
	"context"
	"errors"
	"fmt"

	"quikmart/internal/config"
	"quikmart/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Store persists session records
type Store interface {
	Create(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// NewStore selects the backend named by cfg.Store. The Redis client is only
// required for the redis backend.
func NewStore(cfg config.SessionConfig, db *mongo.Database, redisClient *redis.Client) (Store, error) {
	switch cfg.Store {
	case config.SessionStoreMongo:
		return NewMongoStore(db), nil
	case config.SessionStoreRedis:
		if redisClient == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return NewRedisStore(redisClient), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
