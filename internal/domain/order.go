package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// nextStatus is the linear happy path. Cancellation is handled separately
// because it is reachable from two states and absorbing.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderPending:    OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanAdvanceTo reports whether the single-step advance s -> next is legal.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return nextStatus[s] == next
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

// Terminal reports whether no further transition is legal from this status.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order is created once from a cart snapshot at checkout and mutated only
// through the order service. Orders are never deleted; cancellation is a
// status, not a removal.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerID      string          `json:"customerId"`
	Lines           []OrderLine     `json:"lines"`
	ShippingAddress Address         `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Discount        decimal.Decimal `json:"discount"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Rating          *Rating         `json:"rating,omitempty"`
	Timeline        []TimelineEntry `json:"timeline"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderLine is an immutable snapshot of a cart line at checkout time.
type OrderLine struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName,omitempty"`
	FabricChoice  string          `json:"fabricChoice,omitempty"`
	ColorChoice   string          `json:"colorChoice,omitempty"`
	MeasurementID string          `json:"measurementId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

// Rating is attached to at most one order, at most once.
type Rating struct {
	Rate    int       `json:"rate"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

type TimelineEntry struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	Date   time.Time `json:"date"`
}
