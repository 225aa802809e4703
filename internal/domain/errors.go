package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity indicates a requested line quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidCoupon indicates a coupon code outside the known table.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrIllegalTransition indicates an order status change outside the allowed chain.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrAlreadyCancelled indicates a cancel on an order that is already cancelled.
	ErrAlreadyCancelled = errors.New("order already cancelled")
	// ErrInvalidRating indicates a rating outside the 1..5 integer range.
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	// ErrValidation wraps request-level input failures outside the cart and
	// order guard taxonomy, e.g. a checkout with no shipping address.
	ErrValidation = errors.New("validation failed")
)
