package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quikmart/internal/database"
	"quikmart/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartVersionMismatch = errors.New("cart was modified concurrently")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type cartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{coll: db.Collection(database.CartsCollection)}
}

// FindByUser retrieves the cart owned by userID
func (r *cartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	return cart, nil
}

// GetOrCreate returns the user's cart, inserting an empty one when none exists
func (r *cartRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"items":      bson.A{},
		"version":    int64(0),
		"created_at": now,
		"updated_at": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	cart := &domain.Cart{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(cart)
	if err != nil {
		// Two concurrent upserts race on the unique user index; the loser
		// reads the winner's document.
		if mongo.IsDuplicateKeyError(err) {
			return r.FindByUser(ctx, userID)
		}
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return cart, nil
}

// Save replaces the cart if nobody else wrote it since it was read, and bumps
// its version. Returns ErrCartVersionMismatch otherwise.
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	next := *cart
	next.Version = cart.Version + 1
	if next.Items == nil {
		next.Items = []domain.CartItem{}
	}

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": cart.ID, "version": cart.Version}, &next)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartVersionMismatch
	}

	cart.Version = next.Version
	return nil
}
