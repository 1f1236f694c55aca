package stores

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

// StoresHandler holds the dependencies for storefront handlers.
type StoresHandler struct {
	Store storage.StoreManager
}

// NewStoresHandler creates a new StoresHandler.
func NewStoresHandler(store storage.StoreManager) *StoresHandler {
	return &StoresHandler{Store: store}
}

// CreateStore creates a storefront owned by the caller.
func (h *StoresHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.StoreInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if strings.TrimSpace(in.StoreName) == "" {
		response.Fail(w, http.StatusBadRequest, "store_name is required")
		return
	}

	store := &models.Store{UserId: userID}
	mapping.ToDomainStore(&in, store)

	created, err := h.Store.CreateStore(r.Context(), store)
	if err != nil {
		response.Error(w, r, "Failed to create store", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Store created successfully", mapping.ToApiStore(created))
}

// ListStores lists the caller's storefronts.
func (h *StoresHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	stores, err := h.Store.ListStoresByUserID(r.Context(), userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve stores", err)
		return
	}

	apiStores := make([]api.Store, len(stores))
	for i := range stores {
		apiStores[i] = mapping.ToApiStore(&stores[i])
	}
	response.JSON(w, http.StatusOK, "", apiStores)
}

// GetStore returns one of the caller's storefronts.
func (h *StoresHandler) GetStore(w http.ResponseWriter, r *http.Request, id string) {
	store, ok := h.owned(w, r, id)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, "", mapping.ToApiStore(store))
}

// UpdateStore replaces the editable fields of a storefront.
func (h *StoresHandler) UpdateStore(w http.ResponseWriter, r *http.Request, id string) {
	var in api.StoreInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if strings.TrimSpace(in.StoreName) == "" {
		response.Fail(w, http.StatusBadRequest, "store_name is required")
		return
	}

	store, ok := h.owned(w, r, id)
	if !ok {
		return
	}
	mapping.ToDomainStore(&in, store)

	updated, err := h.Store.UpdateStore(r.Context(), store)
	if err != nil {
		response.Error(w, r, "Failed to update store", err)
		return
	}

	response.JSON(w, http.StatusOK, "Store updated successfully", mapping.ToApiStore(updated))
}

// DeleteStore removes a storefront.
func (h *StoresHandler) DeleteStore(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.owned(w, r, id); !ok {
		return
	}

	if err := h.Store.DeleteStore(r.Context(), id); err != nil {
		response.Error(w, r, "Failed to delete store", err)
		return
	}

	response.JSON(w, http.StatusOK, "Store deleted successfully", nil)
}

// owned loads a store and checks the caller owns it, writing the error response otherwise.
func (h *StoresHandler) owned(w http.ResponseWriter, r *http.Request, id string) (*models.Store, bool) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return nil, false
	}

	store, err := h.Store.GetStore(r.Context(), id)
	if err != nil {
		response.Error(w, r, "Failed to retrieve store", err)
		return nil, false
	}
	if store.UserId != userID {
		response.Error(w, r, "", fmt.Errorf("store %s: %w", id, storage.ErrAccessDenied))
		return nil, false
	}
	return store, true
}
