package product

import (
	"context"

	"tarzi-api/internal/domain"
)

// Service exposes the read-only catalog. Ratings on products are maintained
// by the order service, not here.
type Service struct {
	repo productRepo
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

func New(repo productRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}
