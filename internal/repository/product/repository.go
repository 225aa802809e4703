package product

import (
	"context"

	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

// Repository is the catalog collaborator: it supplies prices at add-to-cart
// time and persists the rating aggregate recomputed after each order rating.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	SetRating(ctx context.Context, productID string, rating decimal.Decimal, numReviews int) error
}
