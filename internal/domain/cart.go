package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is owned either by a customer (remote cart, Postgres-backed) or by a
// guest session (local cart, key-value backed). Exactly one owner field is
// set; the mode is fixed at creation. Subtotal, ShippingCost, TaxAmount and
// TotalPrice are derived and must only be written by pricing.Recompute.
type Cart struct {
	ID           string          `json:"id"`
	CustomerID   *string         `json:"customerId,omitempty"`
	SessionKey   *string         `json:"sessionKey,omitempty"`
	Lines        []CartLine      `json:"lines"`
	CouponCode   string          `json:"couponCode,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CartLine is one tailored item in a cart. UnitPrice is captured from the
// catalog when the line is added and trusted afterwards.
type CartLine struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName,omitempty"`
	FabricChoice  string          `json:"fabricChoice,omitempty"`
	ColorChoice   string          `json:"colorChoice,omitempty"`
	MeasurementID string          `json:"measurementId,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SameItem reports whether two lines refer to the same configured item and
// must therefore be merged rather than duplicated.
func (l CartLine) SameItem(other CartLine) bool {
	return l.ProductID == other.ProductID &&
		l.FabricChoice == other.FabricChoice &&
		l.ColorChoice == other.ColorChoice &&
		l.MeasurementID == other.MeasurementID
}
