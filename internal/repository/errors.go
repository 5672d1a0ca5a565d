package repository

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrInsufficientStock is returned by the order-creation transaction
	// when a line's conditional stock decrement matches no row: the check
	// and the decrement are one atomic statement, so two concurrent
	// shoppers can never both take the last unit.
	ErrInsufficientStock = errors.New("insufficient stock")
)
