package products

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
)

// Store is the storage the product handlers need.
type Store interface {
	storage.StoreReader
	storage.ProductStore
}

// ProductsHandler holds the dependencies for catalog handlers.
type ProductsHandler struct {
	Store Store
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(store Store) *ProductsHandler {
	return &ProductsHandler{Store: store}
}

func validate(in *api.ProductInput) string {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return "name is required"
	case in.Price < 0:
		return "price cannot be negative"
	case in.Stock < 0:
		return "stock cannot be negative"
	}
	return ""
}

// CreateProduct adds a product to one of the caller's stores.
func (h *ProductsHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in api.ProductInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if in.StoreId == "" {
		response.Fail(w, http.StatusBadRequest, "store_id is required")
		return
	}
	if msg := validate(&in); msg != "" {
		response.Fail(w, http.StatusBadRequest, msg)
		return
	}

	if _, ok := h.ownedStore(w, r, in.StoreId); !ok {
		return
	}

	product := &models.Product{StoreId: in.StoreId}
	mapping.ToDomainProduct(&in, product)

	created, err := h.Store.CreateProduct(r.Context(), product)
	if err != nil {
		response.Error(w, r, "Failed to create product", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Product created successfully", mapping.ToApiProduct(created))
}

// ListStoreProducts lists the catalog of one of the caller's stores.
func (h *ProductsHandler) ListStoreProducts(w http.ResponseWriter, r *http.Request, storeId string) {
	if _, ok := h.ownedStore(w, r, storeId); !ok {
		return
	}

	products, err := h.Store.ListProductsByStoreID(r.Context(), storeId)
	if err != nil {
		response.Error(w, r, "Failed to retrieve products", err)
		return
	}

	apiProducts := make([]api.Product, len(products))
	for i := range products {
		apiProducts[i] = mapping.ToApiProduct(&products[i])
	}
	response.JSON(w, http.StatusOK, "", apiProducts)
}

// GetProduct returns a product from one of the caller's stores.
func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request, id string) {
	product, ok := h.ownedProduct(w, r, id)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, "", mapping.ToApiProduct(product))
}

// UpdateProduct replaces a product's catalog fields. Stock is not editable.
func (h *ProductsHandler) UpdateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var in api.ProductInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if msg := validate(&in); msg != "" {
		response.Fail(w, http.StatusBadRequest, msg)
		return
	}

	product, ok := h.ownedProduct(w, r, id)
	if !ok {
		return
	}
	stock := product.Stock
	mapping.ToDomainProduct(&in, product)
	product.Stock = stock

	updated, err := h.Store.UpdateProduct(r.Context(), product)
	if err != nil {
		response.Error(w, r, "Failed to update product", err)
		return
	}

	response.JSON(w, http.StatusOK, "Product updated successfully", mapping.ToApiProduct(updated))
}

// DeleteProduct removes a product. Pending orders keep their price snapshot.
func (h *ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.ownedProduct(w, r, id); !ok {
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		response.Error(w, r, "Failed to delete product", err)
		return
	}

	response.JSON(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductsHandler) ownedStore(w http.ResponseWriter, r *http.Request, storeID string) (*models.Store, bool) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return nil, false
	}

	store, err := h.Store.GetStore(r.Context(), storeID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve store", err)
		return nil, false
	}
	if store.UserId != userID {
		response.Error(w, r, "", fmt.Errorf("store %s: %w", storeID, storage.ErrAccessDenied))
		return nil, false
	}
	return store, true
}

func (h *ProductsHandler) ownedProduct(w http.ResponseWriter, r *http.Request, id string) (*models.Product, bool) {
	if _, ok := middleware.RequireUser(w, r); !ok {
		return nil, false
	}

	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, r, "Failed to retrieve product", err)
		return nil, false
	}
	if _, ok := h.ownedStore(w, r, product.StoreId); !ok {
		return nil, false
	}
	return product, true
}
