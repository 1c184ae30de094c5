// Package repotest provides in-memory repositories with the same semantics as
// the MongoDB ones, for tests of the layers above. It is test-only: nothing
// outside _test.go files may import it.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"quikmart/internal/domain"
	"quikmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is an in-memory repository.UserRepository
type UserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := make(map[primitive.ObjectID]*domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			found[id] = &user
		}
	}
	return found, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for id, user := range r.users {
		if user.Email == email {
			user.Role = role
			user.UpdatedAt = time.Now().UTC()
			r.users[id] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// Delete removes a user, which no HTTP operation does; tests use it to
// produce orphaned products
func (r *UserRepository) Delete(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// ProductRepository is an in-memory repository.ProductRepository
type ProductRepository struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[primitive.ObjectID]domain.Product)}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	r.products[product.ID] = *product
	return nil
}

// Update keeps the stored seller and creation time, like the $set update
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	updated := *product
	updated.SellerID = stored.SellerID
	updated.CreatedAt = stored.CreatedAt
	r.products[product.ID] = updated
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &product, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := make(map[primitive.ObjectID]*domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			found[id] = &product
		}
	}
	return found, nil
}

func (r *ProductRepository) ListVisible(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(func(p *domain.Product) bool { return p.Visible() }), nil
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]*domain.Product, error) {
	return r.filter(func(p *domain.Product) bool { return p.SellerID == sellerID }), nil
}

// filter returns matches in insertion order, which ObjectIDs encode
func (r *ProductRepository) filter(keep func(*domain.Product) bool) []*domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.Product{}
	for _, product := range r.products {
		product := product
		if keep(&product) {
			out = append(out, &product)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

// CartRepository is an in-memory repository.CartRepository with the same
// version check as the MongoDB replace
type CartRepository struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]domain.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[primitive.ObjectID]domain.Cart)}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (r *CartRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		created := domain.NewCart(userID, time.Now().UTC())
		created.ID = primitive.NewObjectID()
		cart = *created
		r.carts[userID] = cart
	}
	return cloneCart(cart), nil
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.UserID]
	if !ok || stored.ID != cart.ID || stored.Version != cart.Version {
		return repository.ErrCartVersionMismatch
	}

	cart.Version++
	r.carts[cart.UserID] = *cloneCart(*cart)
	return nil
}

// Exists reports whether userID has a cart document
func (r *CartRepository) Exists(userID primitive.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.carts[userID]
	return ok
}

func cloneCart(cart domain.Cart) *domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return &cart
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.CartRepository    = (*CartRepository)(nil)
)
