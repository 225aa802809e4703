// Package pricing owns every derived monetary field on a cart. All call
// sites mutate lines through this package so totals are recomputed with one
// formula and one rounding rule.
package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

var (
	taxRate               = decimal.NewFromInt(15)
	freeShippingThreshold = decimal.NewFromInt(500)
	flatShippingCost      = decimal.NewFromInt(50)
	hundred               = decimal.NewFromInt(100)
)

// couponTable is the closed set of recognized codes mapped to a percentage
// of the pre-discount subtotal. Lookup is case-sensitive.
var couponTable = map[string]decimal.Decimal{
	"WELCOME10": decimal.NewFromInt(10),
	"TARZI20":   decimal.NewFromInt(20),
}

// Round2 rounds to two decimals, half away from zero. Every monetary
// multiplication or division in the service goes through this so totals
// reconcile no matter where they are rendered.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AddLine merges the candidate into an existing line with the same
// (product, fabric, color, measurement) tuple, or appends it. The cart is
// left unchanged on error.
func AddLine(cart *domain.Cart, candidate domain.CartLine) error {
	if candidate.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	for i := range cart.Lines {
		if cart.Lines[i].SameItem(candidate) {
			cart.Lines[i].Quantity += candidate.Quantity
			Recompute(cart)
			return nil
		}
	}
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}
	cart.Lines = append(cart.Lines, candidate)
	Recompute(cart)
	return nil
}

// SetQuantity replaces a line's quantity. Quantities below one are rejected
// rather than treated as removal; RemoveLine is the explicit path for that.
func SetQuantity(cart *domain.Cart, lineID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			cart.Lines[i].Quantity = quantity
			Recompute(cart)
			return nil
		}
	}
	return fmt.Errorf("line %s: %w", lineID, domain.ErrNotFound)
}

// RemoveLine deletes the line if present. Removing an absent line is a no-op.
func RemoveLine(cart *domain.Cart, lineID string) {
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			break
		}
	}
	Recompute(cart)
}

// ApplyCoupon sets the cart discount to the code's percentage of the current
// subtotal. A second valid code replaces the first; discounts never stack.
func ApplyCoupon(cart *domain.Cart, code string) error {
	pct, ok := couponTable[code]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCoupon, code)
	}
	cart.CouponCode = code
	cart.Discount = Round2(cart.Subtotal.Mul(pct).Div(hundred))
	Recompute(cart)
	return nil
}

// Clear resets the cart to zero lines and zero derived fields.
func Clear(cart *domain.Cart) {
	cart.Lines = nil
	cart.CouponCode = ""
	cart.Discount = decimal.Zero
	Recompute(cart)
}

// Recompute derives subtotal, shipping, tax and total from the lines and the
// stored discount. It must run after every mutation; no caller derives totals
// on its own.
//
//	subtotal     = round2(sum(unitPrice * quantity))
//	shippingCost = 0 if subtotal > 500 else 50
//	taxAmount    = round2((subtotal - discount) * 15%)
//	totalPrice   = round2(subtotal + shippingCost + taxAmount - discount)
//
// The discount is clamped to the subtotal so totalPrice can never go
// negative when lines shrink after a coupon was applied.
func Recompute(cart *domain.Cart) {
	cart.TaxRate = taxRate
	cart.UpdatedAt = time.Now().UTC()

	if len(cart.Lines) == 0 {
		cart.Subtotal = decimal.Zero
		cart.Discount = decimal.Zero
		cart.ShippingCost = decimal.Zero
		cart.TaxAmount = decimal.Zero
		cart.TotalPrice = decimal.Zero
		return
	}

	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	cart.Subtotal = Round2(subtotal)

	if cart.Discount.GreaterThan(cart.Subtotal) {
		cart.Discount = cart.Subtotal
	}
	if cart.Discount.IsNegative() {
		cart.Discount = decimal.Zero
	}

	if cart.Subtotal.GreaterThan(freeShippingThreshold) {
		cart.ShippingCost = decimal.Zero
	} else {
		cart.ShippingCost = flatShippingCost
	}

	cart.TaxAmount = Round2(cart.Subtotal.Sub(cart.Discount).Mul(taxRate).Div(hundred))
	cart.TotalPrice = Round2(cart.Subtotal.Add(cart.ShippingCost).Add(cart.TaxAmount).Sub(cart.Discount))
}
