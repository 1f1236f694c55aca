package wallets

import (
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
)

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Ledger *ledger.Service
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(svc *ledger.Service) *WalletsHandler {
	return &WalletsHandler{Ledger: svc}
}

// GetWallet returns the caller's wallet, creating an empty one on first access.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.Ledger.GetWallet(r.Context(), userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve wallet", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiWallet(wallet))
}

// TopUpWallet credits the caller's wallet.
func (h *WalletsHandler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	userID, in, ok := h.amount(w, r)
	if !ok {
		return
	}

	wallet, err := h.Ledger.TopUp(r.Context(), userID, in.Amount, description(in))
	if err != nil {
		response.Error(w, r, "Failed to top up wallet", err)
		return
	}

	response.JSON(w, http.StatusOK, "Top-up successful", mapping.ToApiWallet(wallet))
}

// WithdrawWallet debits the caller's wallet.
func (h *WalletsHandler) WithdrawWallet(w http.ResponseWriter, r *http.Request) {
	userID, in, ok := h.amount(w, r)
	if !ok {
		return
	}

	wallet, err := h.Ledger.Withdraw(r.Context(), userID, in.Amount, description(in))
	if err != nil {
		response.Error(w, r, "Failed to withdraw from wallet", err)
		return
	}

	response.JSON(w, http.StatusOK, "Withdrawal successful", mapping.ToApiWallet(wallet))
}

func (h *WalletsHandler) amount(w http.ResponseWriter, r *http.Request) (string, *api.WalletAmount, bool) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return "", nil, false
	}

	var in api.WalletAmount
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return "", nil, false
	}
	return userID, &in, true
}

func description(in *api.WalletAmount) string {
	if in.Description == nil {
		return ""
	}
	return *in.Description
}
