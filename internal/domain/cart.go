package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (product, quantity) line in a cart
type CartItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	AddedAt   time.Time          `json:"addedAt" bson:"added_at"`
}

// Cart is a user's shopping cart. Version changes on every write and guards
// read-modify-write cycles against lost updates.
type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Items     []CartItem         `json:"items" bson:"items"`
	Version   int64              `json:"-" bson:"version"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID primitive.ObjectID, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID primitive.ObjectID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line item for productID.
func (c *Cart) Find(productID primitive.ObjectID) (*CartItem, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return nil, false
	}
	return &c.Items[i], true
}

// Add merges quantity into the existing line for productID or appends a new
// line. quantity must already be positive.
func (c *Cart) Add(productID primitive.ObjectID, quantity int, now time.Time) {
	if item, ok := c.Find(productID); ok {
		item.Quantity += quantity
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity, AddedAt: now})
}

// SetQuantity replaces the quantity of an existing line; zero or below removes
// it. Returns false when no line exists for productID.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// Remove drops the line for productID and reports whether one existed.
func (c *Cart) Remove(productID primitive.ObjectID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear drops every line item.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// ProductIDs lists the referenced products in line order.
func (c *Cart) ProductIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// CartItemView is a line item with its product resolved. Product is nil and
// Missing is true when the referenced product no longer exists.
type CartItemView struct {
	ProductID string   `json:"productId"`
	Product   *Product `json:"product"`
	Quantity  int      `json:"quantity"`
	Missing   bool     `json:"missing,omitempty"`
}

// CartView is the client-facing cart with products resolved.
type CartView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user"`
	Items     []CartItemView `json:"items"`
	ItemCount int            `json:"itemCount"`
	Subtotal  float64        `json:"subtotal"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// BuildCartView joins cart lines against the resolved products. Lines whose
// product is absent from products are kept and flagged as missing.
func BuildCartView(cart *Cart, products map[primitive.ObjectID]*Product) *CartView {
	view := &CartView{
		ID:        cart.ID.Hex(),
		UserID:    cart.UserID.Hex(),
		Items:     make([]CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		line := CartItemView{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
		}
		if product, ok := products[item.ProductID]; ok {
			line.Product = product
			view.Subtotal += product.Price * float64(item.Quantity)
		} else {
			line.Missing = true
		}
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, line)
	}

	return view
}
