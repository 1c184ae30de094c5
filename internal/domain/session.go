package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is server-side authentication state referenced by the session cookie
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// RequestContext is the authenticated identity resolved once at the
// authentication boundary and passed explicitly to services.
type RequestContext struct {
	UserID primitive.ObjectID
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == RoleAdmin
}

// CanManage reports whether the caller may mutate product.
func (rc RequestContext) CanManage(product *Product) bool {
	return product.OwnedBy(rc.UserID) || rc.IsAdmin()
}
