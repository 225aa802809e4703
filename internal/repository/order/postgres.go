package order

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const orderColumns = `
id::text, order_number, customer_id, shipping_address, payment_method,
subtotal::text, shipping_cost::text, tax_amount::text, discount::text, total_price::text,
status, notes, tracking_number, rating_rate, rating_comment, rating_date,
created_at, updated_at
`

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (id, order_number, customer_id, shipping_address, payment_method,
                    subtotal, shipping_cost, tax_amount, discount, total_price,
                    status, notes, tracking_number, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`
	if _, err := tx.Exec(ctx, insertOrder,
		o.ID,
		o.OrderNumber,
		o.CustomerID,
		o.ShippingAddress,
		o.PaymentMethod,
		o.Subtotal.String(),
		o.ShippingCost.String(),
		o.TaxAmount.String(),
		o.Discount.String(),
		o.TotalPrice.String(),
		string(o.Status),
		o.Notes,
		o.TrackingNumber,
		o.CreatedAt,
		o.UpdatedAt,
	); err != nil {
		return err
	}

	const insertLine = `
INSERT INTO order_lines (id, order_id, product_id, product_name, fabric_choice,
                         color_choice, measurement_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	for _, line := range o.Lines {
		if _, err := tx.Exec(ctx, insertLine,
			line.ID,
			o.ID,
			line.ProductID,
			line.ProductName,
			line.FabricChoice,
			line.ColorChoice,
			line.MeasurementID,
			line.Quantity,
			line.UnitPrice.String(),
		); err != nil {
			return err
		}
	}

	if err := insertTimeline(ctx, tx, o.ID, o.Timeline); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOne(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.fetchOne(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns), orderNumber)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, orderColumns)
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadDetails(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Update rewrites the mutable order fields and the timeline. The timeline is
// replaced wholesale to match the read-modify-write model used everywhere
// else; volumes per order are tiny.
func (r *postgresRepo) Update(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE orders
SET status = $1,
    notes = $2,
    tracking_number = $3,
    rating_rate = $4,
    rating_comment = $5,
    rating_date = $6,
    updated_at = $7
WHERE id = $8
`
	var rate *int
	var comment *string
	var ratedAt *time.Time
	if o.Rating != nil {
		rate = &o.Rating.Rate
		comment = &o.Rating.Comment
		ratedAt = &o.Rating.Date
	}
	cmd, err := tx.Exec(ctx, q,
		string(o.Status),
		o.Notes,
		o.TrackingNumber,
		rate,
		comment,
		ratedAt,
		o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_timeline WHERE order_id = $1`, o.ID); err != nil {
		return err
	}
	if err := insertTimeline(ctx, tx, o.ID, o.Timeline); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) RatingsByProduct(ctx context.Context, productID string) ([]int, error) {
	const q = `
SELECT rating_rate
FROM orders
WHERE rating_rate IS NOT NULL
  AND id IN (SELECT order_id FROM order_lines WHERE product_id = $1)
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []int
	for rows.Next() {
		var rate int
		if err := rows.Scan(&rate); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, arg any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, q, arg)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) loadDetails(ctx context.Context, o *domain.Order) error {
	const linesQuery = `
SELECT id::text, product_id::text, product_name, fabric_choice, color_choice,
       measurement_id, quantity, unit_price::text
FROM order_lines
WHERE order_id = $1
`
	rows, err := r.pool.Query(ctx, linesQuery, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
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
		); err != nil {
			return err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return fmt.Errorf("parse unit_price: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const timelineQuery = `
SELECT status, note, created_at
FROM order_timeline
WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`
	tlRows, err := r.pool.Query(ctx, timelineQuery, o.ID)
	if err != nil {
		return err
	}
	defer tlRows.Close()

	for tlRows.Next() {
		var entry domain.TimelineEntry
		if err := tlRows.Scan(&entry.Status, &entry.Note, &entry.Date); err != nil {
			return err
		}
		o.Timeline = append(o.Timeline, entry)
	}
	return tlRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	var subtotal, shipping, tax, discount, total string
	var rate *int
	var comment *string
	var ratedAt *time.Time

	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&subtotal,
		&shipping,
		&tax,
		&discount,
		&total,
		&status,
		&o.Notes,
		&o.TrackingNumber,
		&rate,
		&comment,
		&ratedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"subtotal", subtotal, &o.Subtotal},
		{"shipping_cost", shipping, &o.ShippingCost},
		{"tax_amount", tax, &o.TaxAmount},
		{"discount", discount, &o.Discount},
		{"total_price", total, &o.TotalPrice},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = d
	}

	if rate != nil {
		rating := domain.Rating{Rate: *rate}
		if comment != nil {
			rating.Comment = *comment
		}
		if ratedAt != nil {
			rating.Date = *ratedAt
		}
		o.Rating = &rating
	}
	return &o, nil
}

func insertTimeline(ctx context.Context, tx pgx.Tx, orderID string, entries []domain.TimelineEntry) error {
	const q = `
INSERT INTO order_timeline (order_id, status, note, created_at)
VALUES ($1, $2, $3, $4)
`
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, q, orderID, entry.Status, entry.Note, entry.Date); err != nil {
			return err
		}
	}
	return nil
}
