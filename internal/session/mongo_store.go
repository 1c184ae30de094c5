package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quikmart/internal/database"
	"quikmart/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore stores sessions in the sessions collection. Expired records
// are removed by the TTL index on expires_at.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{coll: db.Collection(database.SessionsCollection)}
}

func (s *mongoStore) Create(ctx context.Context, sess *domain.Session) error {
	if _, err := s.coll.InsertOne(ctx, sess); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get ignores records the TTL monitor has not swept yet
func (s *mongoStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess := &domain.Session{}
	filter := bson.M{"_id": id, "expires_at": bson.M{"$gt": time.Now().UTC()}}
	if err := s.coll.FindOne(ctx, filter).Decode(sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func (s *mongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
