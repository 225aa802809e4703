package product

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `
id::text, sku, name, description, base_price::text, fabric_options, color_options,
active, rating::text, num_reviews, created_at
`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE active ORDER BY name ASC`, productColumns)
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) SetRating(ctx context.Context, productID string, rating decimal.Decimal, numReviews int) error {
	const q = `
UPDATE products
SET rating = $1, num_reviews = $2
WHERE id = $3
`
	cmd, err := r.pool.Exec(ctx, q, rating.String(), numReviews, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var basePrice, rating string
	if err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&basePrice,
		&p.FabricOptions,
		&p.ColorOptions,
		&p.Active,
		&rating,
		&p.NumReviews,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if p.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, fmt.Errorf("parse base_price: %w", err)
	}
	if p.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, fmt.Errorf("parse rating: %w", err)
	}
	return &p, nil
}
