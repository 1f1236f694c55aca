package financial

import (
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
)

// FinancialHandler serves the read side of the ledger.
type FinancialHandler struct {
	Ledger *ledger.Service
}

// NewFinancialHandler creates a new FinancialHandler.
func NewFinancialHandler(svc *ledger.Service) *FinancialHandler {
	return &FinancialHandler{Ledger: svc}
}

// GetFinancialSummary returns the caller's totals per record type.
func (h *FinancialHandler) GetFinancialSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	sum, err := h.Ledger.Summary(r.Context(), userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve financial summary", err)
		return
	}

	response.JSON(w, http.StatusOK, "", api.FinancialSummary{
		TotalIncome:     sum.TotalIncome,
		TotalExpense:    sum.TotalExpense,
		TotalInvestment: sum.TotalInvestment,
		TotalGain:       sum.TotalGain,
		NetIncome:       sum.NetIncome,
		WalletBalance:   sum.WalletBalance,
	})
}

// ListFinancialRecords returns one page of the caller's records, newest first.
func (h *FinancialHandler) ListFinancialRecords(w http.ResponseWriter, r *http.Request, params api.ListFinancialRecordsParams) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	q := storage.RecordQuery{UserID: userID, ListOptions: mapping.ListOptions(params.Limit, params.Cursor)}
	if params.Type != nil {
		q.Type = models.RecordType(*params.Type)
	}

	page, err := h.Ledger.ListRecords(r.Context(), q)
	if err != nil {
		response.Error(w, r, "Failed to retrieve financial records", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiPage(page, mapping.ToApiFinancialRecord))
}

// ListActivities returns one page of the caller's activity log, newest first.
func (h *FinancialHandler) ListActivities(w http.ResponseWriter, r *http.Request, params api.ListActivitiesParams) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	q := storage.ActivityQuery{UserID: userID, ListOptions: mapping.ListOptions(params.Limit, params.Cursor)}
	if params.ActivityType != nil {
		q.ActivityType = models.ActivityType(*params.ActivityType)
	}

	page, err := h.Ledger.ListActivities(r.Context(), q)
	if err != nil {
		response.Error(w, r, "Failed to retrieve activities", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiPage(page, mapping.ToApiActivity))
}
