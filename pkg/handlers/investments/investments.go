package investments

import (
	"fmt"
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
)

// InvestmentsHandler holds the dependencies for investment handlers.
type InvestmentsHandler struct {
	Ledger *ledger.Service
}

// NewInvestmentsHandler creates a new InvestmentsHandler.
func NewInvestmentsHandler(svc *ledger.Service) *InvestmentsHandler {
	return &InvestmentsHandler{Ledger: svc}
}

// ListInvestments lists the caller's investments, optionally by status.
func (h *InvestmentsHandler) ListInvestments(w http.ResponseWriter, r *http.Request, params api.ListInvestmentsParams) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var status models.InvestmentStatus
	if params.Status != nil {
		status = models.InvestmentStatus(*params.Status)
		if status != models.InvestmentActive && status != models.InvestmentSold {
			response.Error(w, r, "", fmt.Errorf("%w: unknown status %q", ledger.ErrInvalidInput, status))
			return
		}
	}

	investments, err := h.Ledger.ListInvestments(r.Context(), userID, status)
	if err != nil {
		response.Error(w, r, "Failed to retrieve investments", err)
		return
	}

	out := make([]api.Investment, len(investments))
	for i := range investments {
		out[i] = mapping.ToApiInvestment(&investments[i])
	}
	response.JSON(w, http.StatusOK, "", out)
}

// CreateInvestment funds a new investment from the caller's wallet.
func (h *InvestmentsHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.NewInvestment
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}

	req := ledger.InvestmentRequest{WalletAddress: in.WalletAddress, Amount: in.Amount}
	if in.Asset != nil {
		req.Asset = *in.Asset
	}

	inv, wallet, err := h.Ledger.BuyInvestment(r.Context(), userID, req)
	if err != nil {
		response.Error(w, r, "Failed to create investment", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Investment created successfully", api.InvestmentResult{
		Investment: mapping.ToApiInvestment(inv),
		Wallet:     mapping.ToApiWallet(wallet),
	})
}

// SellInvestment closes one of the caller's active investments.
func (h *InvestmentsHandler) SellInvestment(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.SellInvestmentRequest
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}

	inv, wallet, err := h.Ledger.SellInvestment(r.Context(), userID, id, in.SellAmount)
	if err != nil {
		response.Error(w, r, "Failed to sell investment", err)
		return
	}

	response.JSON(w, http.StatusOK, "Investment sold successfully", api.InvestmentResult{
		Investment: mapping.ToApiInvestment(inv),
		Wallet:     mapping.ToApiWallet(wallet),
	})
}
