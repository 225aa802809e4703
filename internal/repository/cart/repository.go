package cart

import (
	"context"

	"tarzi-api/internal/domain"
)

// Repository persists customer-owned carts. Carts are written whole
// (read-modify-write, no optimistic lock): the pricing core mutates an
// in-memory cart and Save replaces the stored row and its lines.
type Repository interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}
