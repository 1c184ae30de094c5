package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IndexSpec names the indexes one collection must carry
type IndexSpec struct {
	Collection string
	Models     []mongo.IndexModel
}

// Indexes returns every index the application relies on. The unique indexes
// back the one-user-per-email and one-cart-per-user invariants; the sessions
// TTL index lets MongoDB expire sessions on its own.
func Indexes() []IndexSpec {
	return []IndexSpec{
		{
			Collection: UsersCollection,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("users_email_unique").SetUnique(true),
				},
			},
		},
		{
			Collection: ProductsCollection,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "hidden", Value: 1}, {Key: "available", Value: 1}},
					Options: options.Index().SetName("products_visibility"),
				},
				{
					Keys:    bson.D{{Key: "seller", Value: 1}},
					Options: options.Index().SetName("products_seller"),
				},
			},
		},
		{
			Collection: CartsCollection,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "user", Value: 1}},
					Options: options.Index().SetName("carts_user_unique").SetUnique(true),
				},
			},
		},
		{
			Collection: SessionsCollection,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "expires_at", Value: 1}},
					Options: options.Index().SetName("sessions_ttl").SetExpireAfterSeconds(0),
				},
			},
		},
	}
}

// EnsureIndexes creates any missing indexes. Creating an existing index with
// the same definition is a no-op, so this runs on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	for _, spec := range Indexes() {
		names, err := db.Collection(spec.Collection).Indexes().CreateMany(ctx, spec.Models)
		if err != nil {
			logger.Error("Failed to create indexes",
				zap.String("collection", spec.Collection),
				zap.Error(err),
			)
			return fmt.Errorf("failed to create indexes on %s: %w", spec.Collection, err)
		}
		logger.Debug("Indexes ensured",
			zap.String("collection", spec.Collection),
			zap.Strings("indexes", names),
		)
	}

	logger.Info("Database indexes ensured")
	return nil
}
