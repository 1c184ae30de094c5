package service

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidEmailFormat = errors.New("invalid email address")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("please login to access this resource")
	ErrForbidden          = errors.New("not authorized to modify this product")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCartItemNotFound   = errors.New("item not found in cart")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrCartConflict       = errors.New("cart was modified concurrently, please retry")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// parseProductID maps a malformed product id to notFound, which lets lookups
// of garbage ids behave like lookups of unknown ones
func parseProductID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}
