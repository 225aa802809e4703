package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU           string
	Name          string
	Description   string
	BasePrice     string
	FabricOptions []string
	ColorOptions  []string
	Active        bool
}

// Apply inserts a small tailoring catalog for manual testing. It is
// idempotent via ON CONFLICT on the SKU.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:           "TRZ-SUIT-CLASSIC",
			Name:          "Classic Two-Piece Suit",
			Description:   "Made-to-measure two-piece suit with a notch lapel",
			BasePrice:     "299.00",
			FabricOptions: []string{"wool", "wool-cashmere", "linen"},
			ColorOptions:  []string{"navy", "charcoal", "black"},
			Active:        true,
		},
		{
			SKU:           "TRZ-SHIRT-OXFORD",
			Name:          "Oxford Dress Shirt",
			Description:   "Custom-fitted oxford shirt with choice of collar",
			BasePrice:     "99.00",
			FabricOptions: []string{"cotton", "cotton-linen"},
			ColorOptions:  []string{"white", "light-blue", "striped"},
			Active:        true,
		},
		{
			SKU:           "TRZ-TROUSERS-WOOL",
			Name:          "Tailored Wool Trousers",
			Description:   "Flat-front trousers cut to measure",
			BasePrice:     "149.00",
			FabricOptions: []string{"wool", "wool-stretch"},
			ColorOptions:  []string{"grey", "navy", "beige"},
			Active:        true,
		},
		{
			SKU:           "TRZ-VEST-CLASSIC",
			Name:          "Classic Waistcoat",
			Description:   "Five-button waistcoat, discontinued cut",
			BasePrice:     "89.00",
			FabricOptions: []string{"wool"},
			ColorOptions:  []string{"grey"},
			Active:        false,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, base_price, fabric_options, color_options, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (sku) DO UPDATE
SET name           = EXCLUDED.name,
    description    = EXCLUDED.description,
    base_price     = EXCLUDED.base_price,
    fabric_options = EXCLUDED.fabric_options,
    color_options  = EXCLUDED.color_options,
    active         = EXCLUDED.active
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.BasePrice, p.FabricOptions, p.ColorOptions, p.Active)
	return err
}
