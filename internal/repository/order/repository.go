package order

import (
	"context"

	"tarzi-api/internal/domain"
)

// Repository persists orders. Update writes the whole mutable surface of an
// order (status, notes, tracking, rating, timeline); lines are immutable
// after Create.
type Repository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	// RatingsByProduct returns the rating of every rated order containing the
	// product, one entry per order. Used for the full aggregate re-scan.
	RatingsByProduct(ctx context.Context, productID string) ([]int, error)
}
