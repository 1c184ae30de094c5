package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quikmart/internal/domain"
	"quikmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCartAttempts bounds the read-modify-write retries of one cart mutation
const MaxCartAttempts = 3

// CartService defines the interface for shopping cart business logic
type CartService interface {
	Get(ctx context.Context, rc domain.RequestContext) (*domain.CartView, error)
	Add(ctx context.Context, rc domain.RequestContext, productID string, quantity int) (*domain.CartView, error)
	UpdateQuantity(ctx context.Context, rc domain.RequestContext, productID string, quantity int) (*domain.CartView, error)
	Remove(ctx context.Context, rc domain.RequestContext, productID string) (*domain.CartView, error)
	Clear(ctx context.Context, rc domain.RequestContext) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// cartChange edits the cart in place and reports whether it needs saving
type cartChange func(cart *domain.Cart) (bool, error)

// Get returns the caller's cart, creating an empty one on first access
func (s *cartService) Get(ctx context.Context, rc domain.RequestContext) (*domain.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.view(ctx, cart)
}

// Add merges quantity into the line for productID, appending it if absent.
// Hidden and unavailable products may be added.
func (s *cartService) Add(ctx context.Context, rc domain.RequestContext, productID string, quantity int) (*domain.CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	pid, err := parseCartProductID(productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	cart, err := s.mutate(ctx, rc, true, func(cart *domain.Cart) (bool, error) {
		cart.Add(pid, quantity, time.Now().UTC())
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// UpdateQuantity replaces the quantity of an existing line; zero or below
// removes it
func (s *cartService) UpdateQuantity(ctx context.Context, rc domain.RequestContext, productID string, quantity int) (*domain.CartView, error) {
	pid, err := parseCartProductID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.mutate(ctx, rc, false, func(cart *domain.Cart) (bool, error) {
		if !cart.SetQuantity(pid, quantity) {
			return false, ErrCartItemNotFound
		}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.view(ctx, cart)
}

// Remove drops the line for productID. Removing an absent line is a no-op,
// and an id that cannot name a product names an absent line.
func (s *cartService) Remove(ctx context.Context, rc domain.RequestContext, productID string) (*domain.CartView, error) {
	pid, err := parseCartProductID(productID)
	if err != nil {
		return s.Get(ctx, rc)
	}

	cart, err := s.mutate(ctx, rc, true, func(cart *domain.Cart) (bool, error) {
		return cart.Remove(pid), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Clear empties the cart. A caller without a cart keeps having none.
func (s *cartService) Clear(ctx context.Context, rc domain.RequestContext) error {
	_, err := s.mutate(ctx, rc, false, func(cart *domain.Cart) (bool, error) {
		if len(cart.Items) == 0 {
			return false, nil
		}
		cart.Clear()
		return true, nil
	})
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	return err
}

// mutate runs change as an optimistic read-modify-write, retrying when a
// concurrent writer bumped the cart version first. When create is false a
// missing cart surfaces as repository.ErrCartNotFound.
func (s *cartService) mutate(ctx context.Context, rc domain.RequestContext, create bool, change cartChange) (*domain.Cart, error) {
	for attempt := 0; attempt < MaxCartAttempts; attempt++ {
		cart, err := s.load(ctx, rc.UserID, create)
		if err != nil {
			return nil, err
		}

		changed, err := change(cart)
		if err != nil {
			return nil, err
		}
		if !changed {
			return cart, nil
		}

		cart.UpdatedAt = time.Now().UTC()
		err = s.cartRepo.Save(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrCartVersionMismatch) {
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
	}

	return nil, ErrCartConflict
}

func (s *cartService) load(ctx context.Context, userID primitive.ObjectID, create bool) (*domain.Cart, error) {
	if create {
		cart, err := s.cartRepo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get cart: %w", err)
		}
		return cart, nil
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return cart, nil
}

// view resolves every line's product with one batch lookup
func (s *cartService) view(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	products, err := s.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}
	return domain.BuildCartView(cart, products), nil
}

func parseCartProductID(id string) (primitive.ObjectID, error) {
	return parseProductID(id, validationError("productId %q is not a valid id", id))
}
