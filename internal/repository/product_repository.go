package repository

import (
	"context"
	"errors"
	"fmt"

	"quikmart/internal/database"
	"quikmart/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Product, error)
	ListVisible(ctx context.Context) ([]*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*domain.Product, error)
}

type productRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{coll: db.Collection(database.ProductsCollection)}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes the mutable fields of an existing product. Seller and
// creation time are never part of the update document, and a product that
// has been deleted in the meantime is not recreated.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"image":       product.Image,
		"category":    product.Category,
		"available":   product.Available,
		"hidden":      product.Hidden,
		"updated_at":  product.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID regardless of its visibility flags
func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs resolves a batch of products in one query. Unknown ids are
// absent from the result.
func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Product, error) {
	products := make(map[primitive.ObjectID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	for _, product := range found {
		products[product.ID] = product
	}

	return products, nil
}

// ListVisible returns products that are neither hidden nor unavailable, in
// insertion order
func (r *productRepository) ListVisible(ctx context.Context) ([]*domain.Product, error) {
	products, err := r.find(ctx, bson.M{"hidden": false, "available": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list visible products: %w", err)
	}
	return products, nil
}

// ListBySeller returns every product of sellerID regardless of flags
func (r *productRepository) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*domain.Product, error) {
	products, err := r.find(ctx, bson.M{"seller": sellerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list products by seller: %w", err)
	}
	return products, nil
}

func (r *productRepository) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	products := []*domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}
