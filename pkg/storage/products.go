package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// ProductReader defines read access to the catalog.
type ProductReader interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProductsByStoreID(ctx context.Context, storeID string) ([]models.Product, error)
}

// ProductStore defines full access to the catalog. Stock is only ever changed
// through order creation and settlement, never through UpdateProduct.
type ProductStore interface {
	ProductReader
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}
