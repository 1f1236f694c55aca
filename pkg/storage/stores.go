package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// StoreReader defines read access to storefronts.
type StoreReader interface {
	GetStore(ctx context.Context, storeID string) (*models.Store, error)
	ListStoresByUserID(ctx context.Context, userID string) ([]models.Store, error)
}

// StoreManager defines full access to storefronts.
type StoreManager interface {
	StoreReader
	CreateStore(ctx context.Context, store *models.Store) (*models.Store, error)
	UpdateStore(ctx context.Context, store *models.Store) (*models.Store, error)
	DeleteStore(ctx context.Context, storeID string) error
}
