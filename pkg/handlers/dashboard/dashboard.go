package dashboard

import (
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
)

// Store is the read-only storage the dashboard aggregates over.
type Store interface {
	storage.StoreReader
	storage.ProductReader
	storage.OrderReader
}

// DashboardHandler aggregates per-user statistics.
type DashboardHandler struct {
	Store  Store
	Ledger *ledger.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store Store, svc *ledger.Service) *DashboardHandler {
	return &DashboardHandler{Store: store, Ledger: svc}
}

// GetDashboardStats counts the caller's stores, products and orders. Revenue
// is the total of paid orders.
func (h *DashboardHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	stores, err := h.Store.ListStoresByUserID(ctx, userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve dashboard stats", err)
		return
	}

	stats := api.DashboardStats{TotalStores: len(stores)}
	for _, store := range stores {
		products, err := h.Store.ListProductsByStoreID(ctx, store.Id)
		if err != nil {
			response.Error(w, r, "Failed to retrieve dashboard stats", err)
			return
		}
		stats.TotalProducts += len(products)

		orders, err := h.Store.ListOrdersByStoreID(ctx, store.Id)
		if err != nil {
			response.Error(w, r, "Failed to retrieve dashboard stats", err)
			return
		}
		stats.TotalOrders += len(orders)
		for _, order := range orders {
			if order.PaymentStatus == models.PaymentPaid {
				stats.PaidOrders++
				stats.Revenue += order.TotalAmount
			}
		}
	}

	wallet, err := h.Ledger.GetWallet(ctx, userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve dashboard stats", err)
		return
	}
	stats.WalletBalance = wallet.Balance

	response.JSON(w, http.StatusOK, "", stats)
}
