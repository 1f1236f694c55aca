package orders

import "errors"

var (
	// ErrInvalidOrder is returned when the cart or its fields are malformed.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidAmount is returned when the discounted total is not positive.
	ErrInvalidAmount = errors.New("order total must be greater than zero")

	// ErrGateway is returned when the payment gateway could not open a session.
	ErrGateway = errors.New("payment gateway error")

	// ErrAmountMismatch is returned when a paid signal reports a gross amount
	// different from the stored order total.
	ErrAmountMismatch = errors.New("gross amount does not match order total")
)
