package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	const q = `
SELECT id::text, customer_id, coupon_code, discount::text, subtotal::text,
       shipping_cost::text, tax_rate::text, tax_amount::text, total_price::text,
       created_at, updated_at
FROM carts
WHERE customer_id = $1
`
	var cart domain.Cart
	var customer string
	var discount, subtotal, shipping, taxRate, taxAmount, total string
	err := r.pool.QueryRow(ctx, q, customerID).Scan(
		&cart.ID,
		&customer,
		&cart.CouponCode,
		&discount,
		&subtotal,
		&shipping,
		&taxRate,
		&taxAmount,
		&total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	cart.CustomerID = &customer
	if err := assignMoney(&cart, discount, subtotal, shipping, taxRate, taxAmount, total); err != nil {
		return nil, err
	}

	const linesQuery = `
SELECT id::text, product_id::text, product_name, fabric_choice, color_choice,
       measurement_id, quantity, unit_price::text, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		var unitPrice string
		if err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&line.ProductName,
			&line.FabricChoice,
			&line.ColorChoice,
			&line.MeasurementID,
			&line.Quantity,
			&unitPrice,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse unit_price: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

// Save upserts the cart row and replaces its lines inside one transaction.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.CustomerID == nil {
		return errors.New("cart has no owning customer")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `
INSERT INTO carts (id, customer_id, coupon_code, discount, subtotal, shipping_cost,
                   tax_rate, tax_amount, total_price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE
SET coupon_code   = EXCLUDED.coupon_code,
    discount      = EXCLUDED.discount,
    subtotal      = EXCLUDED.subtotal,
    shipping_cost = EXCLUDED.shipping_cost,
    tax_rate      = EXCLUDED.tax_rate,
    tax_amount    = EXCLUDED.tax_amount,
    total_price   = EXCLUDED.total_price,
    updated_at    = EXCLUDED.updated_at
`
	if _, err := tx.Exec(ctx, upsert,
		cart.ID,
		*cart.CustomerID,
		cart.CouponCode,
		cart.Discount.String(),
		cart.Subtotal.String(),
		cart.ShippingCost.String(),
		cart.TaxRate.String(),
		cart.TaxAmount.String(),
		cart.TotalPrice.String(),
		cart.CreatedAt,
		cart.UpdatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}

	const insertLine = `
INSERT INTO cart_lines (id, cart_id, product_id, product_name, fabric_choice,
                        color_choice, measurement_id, quantity, unit_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	for _, line := range cart.Lines {
		if _, err := tx.Exec(ctx, insertLine,
			line.ID,
			cart.ID,
			line.ProductID,
			line.ProductName,
			line.FabricChoice,
			line.ColorChoice,
			line.MeasurementID,
			line.Quantity,
			line.UnitPrice.String(),
			line.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func assignMoney(cart *domain.Cart, discount, subtotal, shipping, taxRate, taxAmount, total string) error {
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"discount", discount, &cart.Discount},
		{"subtotal", subtotal, &cart.Subtotal},
		{"shipping_cost", shipping, &cart.ShippingCost},
		{"tax_rate", taxRate, &cart.TaxRate},
		{"tax_amount", taxAmount, &cart.TaxAmount},
		{"total_price", total, &cart.TotalPrice},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = d
	}
	return nil
}
