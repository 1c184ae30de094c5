package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"quikmart/internal/domain"
	"quikmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductService defines the interface for catalog business logic
type ProductService interface {
	ListVisible(ctx context.Context) ([]*domain.ProductView, error)
	ListMine(ctx context.Context, rc domain.RequestContext) ([]*domain.ProductView, error)
	GetByID(ctx context.Context, id string) (*domain.ProductView, error)
	Create(ctx context.Context, rc domain.RequestContext, fields domain.ProductPatch) (*domain.ProductView, error)
	Update(ctx context.Context, rc domain.RequestContext, id string, patch domain.ProductPatch) (*domain.ProductView, error)
	Delete(ctx context.Context, rc domain.RequestContext, id string) error
	ToggleVisibility(ctx context.Context, rc domain.RequestContext, id string) (*domain.ProductView, error)
}

type productService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, userRepo repository.UserRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// ListVisible returns the public catalog with sellers resolved
func (s *productService) ListVisible(ctx context.Context) ([]*domain.ProductView, error) {
	products, err := s.productRepo.ListVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return s.views(ctx, products)
}

// ListMine returns every product the caller sells, hidden ones included
func (s *productService) ListMine(ctx context.Context, rc domain.RequestContext) ([]*domain.ProductView, error) {
	products, err := s.productRepo.ListBySeller(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return s.views(ctx, products)
}

// GetByID returns a product regardless of its visibility flags
func (s *productService) GetByID(ctx context.Context, id string) (*domain.ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, product)
}

// Create adds a product sold by the caller
func (s *productService) Create(ctx context.Context, rc domain.RequestContext, fields domain.ProductPatch) (*domain.ProductView, error) {
	if err := requireFields(fields); err != nil {
		return nil, err
	}
	if err := validatePatch(fields); err != nil {
		return nil, err
	}

	seller, err := s.userRepo.FindByID(ctx, rc.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to find seller: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		SellerID:  seller.ID,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.Apply(product)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &domain.ProductView{
		Product: product,
		Seller:  domain.SellerRef{ID: seller.ID.Hex(), Email: seller.Email},
	}, nil
}

// Update merges the whitelisted fields of patch into the product
func (s *productService) Update(ctx context.Context, rc domain.RequestContext, id string, patch domain.ProductPatch) (*domain.ProductView, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	return s.mutate(ctx, rc, id, func(product *domain.Product) {
		patch.Apply(product)
	})
}

// ToggleVisibility flips the hidden flag
func (s *productService) ToggleVisibility(ctx context.Context, rc domain.RequestContext, id string) (*domain.ProductView, error) {
	return s.mutate(ctx, rc, id, func(product *domain.Product) {
		product.Hidden = !product.Hidden
	})
}

// Delete removes the product. Cart lines that reference it are left in place.
func (s *productService) Delete(ctx context.Context, rc domain.RequestContext, id string) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !rc.CanManage(product) {
		return ErrForbidden
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) mutate(ctx context.Context, rc domain.RequestContext, id string, change func(*domain.Product)) (*domain.ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rc.CanManage(product) {
		return nil, ErrForbidden
	}

	change(product)
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.view(ctx, product)
}

func (s *productService) find(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseProductID(id, ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func (s *productService) view(ctx context.Context, product *domain.Product) (*domain.ProductView, error) {
	views, err := s.views(ctx, []*domain.Product{product})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views resolves sellers for all products with a single user lookup. A seller
// that no longer exists resolves to an empty email.
func (s *productService) views(ctx context.Context, products []*domain.Product) ([]*domain.ProductView, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, product := range products {
		if !seen[product.SellerID] {
			seen[product.SellerID] = true
			ids = append(ids, product.SellerID)
		}
	}

	sellers, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sellers: %w", err)
	}

	views := make([]*domain.ProductView, 0, len(products))
	for _, product := range products {
		ref := domain.SellerRef{ID: product.SellerID.Hex()}
		if seller, ok := sellers[product.SellerID]; ok {
			ref.Email = seller.Email
		}
		views = append(views, &domain.ProductView{Product: product, Seller: ref})
	}
	return views, nil
}

func requireFields(fields domain.ProductPatch) error {
	var missing []string
	if fields.Name == nil {
		missing = append(missing, "name")
	}
	if fields.Description == nil {
		missing = append(missing, "description")
	}
	if fields.Price == nil {
		missing = append(missing, "price")
	}
	if fields.Image == nil {
		missing = append(missing, "image")
	}
	if fields.Category == nil {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return validationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// validatePatch checks the fields that are present
func validatePatch(patch domain.ProductPatch) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"name", patch.Name},
		{"description", patch.Description},
		{"image", patch.Image},
		{"category", patch.Category},
	}
	for _, field := range fields {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return validationError("%s must not be empty", field.name)
		}
	}

	if patch.Price != nil {
		price := *patch.Price
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return validationError("price must be a non-negative number")
		}
	}
	return nil
}
