package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a product in the catalog
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Image       string             `json:"image" bson:"image"`
	Category    string             `json:"category" bson:"category"`
	SellerID    primitive.ObjectID `json:"-" bson:"seller"`
	Available   bool               `json:"available" bson:"available"`
	Hidden      bool               `json:"hidden" bson:"hidden"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Visible reports whether the product belongs in the public listing.
func (p *Product) Visible() bool {
	return !p.Hidden && p.Available
}

// OwnedBy reports whether userID is the seller of record.
func (p *Product) OwnedBy(userID primitive.ObjectID) bool {
	return p.SellerID == userID
}

// ProductPatch is the whitelist of fields a seller or admin may change.
// Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Category    *string
	Available   *bool
	Hidden      *bool
}

// IsEmpty reports whether the patch carries no changes.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Image == nil &&
		p.Category == nil && p.Available == nil && p.Hidden == nil
}

// Apply merges the patch onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Available != nil {
		product.Available = *p.Available
	}
	if p.Hidden != nil {
		product.Hidden = *p.Hidden
	}
}

// SellerRef is the display form of a product's seller.
type SellerRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ProductView is a product with its seller resolved for display.
type ProductView struct {
	*Product
	Seller SellerRef `json:"seller"`
}
