package service

import "errors"

var (
	// ErrInsufficientStock means the requested quantity exceeds the
	// product's available stock. The cart is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")

	// ErrLineNotFound means the product has no line in the cart.
	ErrLineNotFound = errors.New("product not in cart")

	// ErrIdentityRequired means a cart operation arrived with neither a
	// user id nor a guest device id.
	ErrIdentityRequired = errors.New("cart operation requires an identity")

	// ErrCartConflict means the cart changed between this caller's read
	// and write. The mutation did not land; re-read and retry.
	ErrCartConflict = errors.New("cart was modified concurrently, retry")

	// ErrValidation wraps caller-facing input problems (empty required
	// field, bad email, negative amounts). Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus means the submitted order status is not one of
	// the allowed values.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrTotalMismatch means the client-declared total does not match
	// the sum of the submitted line items.
	ErrTotalMismatch = errors.New("declared total does not match line items")
)
