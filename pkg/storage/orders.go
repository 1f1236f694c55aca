package storage

import (
	"context"
	"time"

	"github.com/chris/store-payments/pkg/models"
)

// OrderReader defines the interface for reading order data.
type OrderReader interface {
	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// GetOrderByExternalID retrieves an order by the identifier shared with the payment gateway.
	GetOrderByExternalID(ctx context.Context, externalOrderID string) (*models.Order, error)

	// ListOrdersByStoreID retrieves all orders of a store, newest first.
	ListOrdersByStoreID(ctx context.Context, storeID string) ([]models.Order, error)

	// GetStalePendingOrders retrieves orders still pending after maxAge.
	GetStalePendingOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error)
}

// OrderManager defines the interface for placing orders.
type OrderManager interface {
	// CreateOrder decrements stock for every line item and persists the order in
	// one transaction. It returns ErrInsufficientStock if any product cannot cover
	// its quantity, in which case nothing is written.
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
}

// OrderStore combines the reader and manager interfaces.
type OrderStore interface {
	OrderReader
	OrderManager
}
