package history

import (
	"net/http"
	"strings"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/storage"
)

const (
	defaultPaymentMethod = "midtrans"
	defaultStatus        = "completed"
)

// HistoryHandler stores client-submitted checkout receipts. Receipts never
// touch the ledger; income is recorded when the payment is reconciled.
type HistoryHandler struct {
	Store storage.HistoryStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store storage.HistoryStore) *HistoryHandler {
	return &HistoryHandler{Store: store}
}

// CreateTransactionHistory records a receipt for the caller.
func (h *HistoryHandler) CreateTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.NewTransactionHistory
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	if empty(in.OrderId) && empty(in.ExternalOrderId) {
		response.Fail(w, http.StatusBadRequest, "Order ID is required")
		return
	}
	if in.TotalAmount <= 0 {
		response.Fail(w, http.StatusBadRequest, "total_amount must be greater than zero")
		return
	}
	if in.DiscountAmount < 0 {
		response.Fail(w, http.StatusBadRequest, "discount_amount cannot be negative")
		return
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		in.PaymentMethod = defaultPaymentMethod
	}
	if strings.TrimSpace(in.Status) == "" {
		in.Status = defaultStatus
	}

	created, err := h.Store.CreateTransactionHistory(r.Context(), mapping.ToDomainTransactionHistory(userID, &in))
	if err != nil {
		response.Error(w, r, "Failed to record transaction history", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Transaction history recorded successfully", mapping.ToApiTransactionHistory(created))
}

// ListTransactionHistory returns one page of the caller's receipts, newest first.
func (h *HistoryHandler) ListTransactionHistory(w http.ResponseWriter, r *http.Request, params api.ListTransactionHistoryParams) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	q := storage.HistoryQuery{UserID: userID, ListOptions: mapping.ListOptions(params.Limit, params.Cursor)}
	if params.Status != nil {
		q.Status = *params.Status
	}

	page, err := h.Store.ListTransactionHistory(r.Context(), q)
	if err != nil {
		response.Error(w, r, "Failed to retrieve transaction history", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiPage(page, mapping.ToApiTransactionHistory))
}

func empty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
