package storage

import "errors"

// ErrNotFound is returned when the requested item does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a create would overwrite an existing item.
var ErrAlreadyExists = errors.New("already exists")

// ErrAccessDenied is returned when the caller does not own the referenced resource.
var ErrAccessDenied = errors.New("access denied")

// ErrInsufficientStock is returned when a product cannot cover the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInsufficientFunds is returned when a wallet has an insufficient balance for a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvestmentNotActive is returned when selling an investment that was already sold.
var ErrInvestmentNotActive = errors.New("investment is not active")

// ErrInvalidCursor is returned when a pagination cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")
