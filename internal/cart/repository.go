package cart

import (
	"context"
	"errors"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("item not found in cart")
)

// Repository defines the interface for session cart persistence.
// Consumers define this interface, not the Redis implementation.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
