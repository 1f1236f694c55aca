package financial_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/financial"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/chris/store-payments/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func newHandler(store *mocks.Storage) *financial.FinancialHandler {
	return financial.NewFinancialHandler(ledger.NewService(store, nil, nil))
}

func TestGetFinancialSummary(t *testing.T) {
	mockStorage := new(mocks.Storage)
	mockStorage.On("SumFinancialRecords", mock.Anything, "user-1").Return(map[models.RecordType]int64{
		models.RecordIncome:     5000,
		models.RecordExpense:    1200,
		models.RecordInvestment: 1000,
		models.RecordGain:       -200,
	}, nil).Once()
	mockStorage.On("GetWallet", mock.Anything, "user-1").Return(&models.Wallet{UserId: "user-1", Balance: 2800}, nil).Once()

	rr := httptest.NewRecorder()
	newHandler(mockStorage).GetFinancialSummary(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/financial/summary", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data api.FinancialSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(3600), resp.Data.NetIncome)
	assert.Equal(t, int64(2800), resp.Data.WalletBalance)
	mockStorage.AssertExpectations(t)
}

func TestListFinancialRecords(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ListFinancialRecords", mock.Anything, mock.MatchedBy(func(q storage.RecordQuery) bool {
			return q.UserID == "user-1" && q.Type == models.RecordIncome && q.Limit == 10 && q.Cursor == "abc"
		})).Return(&storage.Page[models.FinancialRecord]{
			Items:      []models.FinancialRecord{{Id: "r1", Type: models.RecordIncome, Amount: 100}},
			NextCursor: "next",
		}, nil).Once()

		recordType, limit, cursor := "income", int32(10), "abc"
		rr := httptest.NewRecorder()
		newHandler(mockStorage).ListFinancialRecords(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/financial/records", nil), "user-1"),
			api.ListFinancialRecordsParams{Type: &recordType, Limit: &limit, Cursor: &cursor})

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Data api.Page[api.FinancialRecord] `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Items, 1)
		require.NotNil(t, resp.Data.NextCursor)
		assert.Equal(t, "next", *resp.Data.NextCursor)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		mockStorage := new(mocks.Storage)

		recordType := "bonus"
		rr := httptest.NewRecorder()
		newHandler(mockStorage).ListFinancialRecords(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/financial/records", nil), "user-1"),
			api.ListFinancialRecordsParams{Type: &recordType})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockStorage.AssertNotCalled(t, "ListFinancialRecords", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Cursor", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ListFinancialRecords", mock.Anything, mock.Anything).Return(nil, storage.ErrInvalidCursor).Once()

		rr := httptest.NewRecorder()
		newHandler(mockStorage).ListFinancialRecords(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/financial/records", nil), "user-1"),
			api.ListFinancialRecordsParams{})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListActivities(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ListActivities", mock.Anything, mock.MatchedBy(func(q storage.ActivityQuery) bool {
			return q.UserID == "user-1" && q.ActivityType == models.ActivityPayment
		})).Return(&storage.Page[models.ActivityLog]{
			Items: []models.ActivityLog{{Id: "a1", ActivityType: models.ActivityPayment, Amount: 25000}},
		}, nil).Once()

		activityType := "payment"
		rr := httptest.NewRecorder()
		newHandler(mockStorage).ListActivities(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/activities", nil), "user-1"),
			api.ListActivitiesParams{ActivityType: &activityType})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"activity_type":"payment"`)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		mockStorage := new(mocks.Storage)

		activityType := "refund"
		rr := httptest.NewRecorder()
		newHandler(mockStorage).ListActivities(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/activities", nil), "user-1"),
			api.ListActivitiesParams{ActivityType: &activityType})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
