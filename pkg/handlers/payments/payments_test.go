package payments_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/store-payments/pkg/api"
	eventmocks "github.com/chris/store-payments/pkg/events/mocks"
	"github.com/chris/store-payments/pkg/gateway"
	gatewaymocks "github.com/chris/store-payments/pkg/gateway/mocks"
	"github.com/chris/store-payments/pkg/handlers/payments"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	ordersvc "github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/chris/store-payments/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const externalID = "ORD-1714557600000-ABCDEFGHI"

func pendingOrder() *models.Order {
	return &models.Order{
		Id:              "order-1",
		StoreId:         "store-1",
		UserId:          "user-1",
		ExternalOrderId: externalID,
		Items:           []models.LineItem{{ProductId: "p1", ProductName: "Kopi", Quantity: 1, UnitPrice: 25000}},
		TotalAmount:     25000,
		PaymentStatus:   models.PaymentPending,
	}
}

func newHandler() (*payments.PaymentsHandler, *mocks.Storage, *gatewaymocks.Gateway, *eventmocks.Publisher) {
	store := new(mocks.Storage)
	gw := new(gatewaymocks.Gateway)
	publisher := new(eventmocks.Publisher)
	svc := ordersvc.NewService(store, gw, nil, publisher, nil, ordersvc.Config{})
	return payments.NewPaymentsHandler(svc), store, gw, publisher
}

func ptr(s string) *string { return &s }

func TestPaymentFinish(t *testing.T) {
	t.Run("Settled", func(t *testing.T) {
		h, store, gw, publisher := newHandler()
		gw.On("GetStatus", mock.Anything, externalID).Return(&gateway.TransactionStatus{
			OrderID: externalID, TransactionStatus: gateway.StatusSettlement, GrossAmount: 25000,
		}, nil).Once()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Once()
		store.On("SettleOrder", mock.Anything, mock.Anything).Return(true, nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

		rr := httptest.NewRecorder()
		h.PaymentFinish(rr, httptest.NewRequest(http.MethodGet, "/api/payment/finish", nil), api.PaymentRedirectParams{
			OrderId:           ptr(externalID),
			TransactionStatus: ptr("settlement"),
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "Payment Successful")
		assert.Contains(t, rr.Body.String(), "PAYMENT_FINISH")
		store.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("Gateway Unavailable Still Renders", func(t *testing.T) {
		h, _, gw, _ := newHandler()
		gw.On("GetStatus", mock.Anything, externalID).Return(nil, errors.New("connection refused")).Once()

		rr := httptest.NewRecorder()
		h.PaymentFinish(rr, httptest.NewRequest(http.MethodGet, "/api/payment/finish", nil), api.PaymentRedirectParams{
			OrderId: ptr(externalID),
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Payment Submitted")
	})

	t.Run("Missing Order Id", func(t *testing.T) {
		h, _, gw, _ := newHandler()

		rr := httptest.NewRecorder()
		h.PaymentFinish(rr, httptest.NewRequest(http.MethodGet, "/api/payment/finish", nil), api.PaymentRedirectParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		gw.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
	})
}

func TestPaymentError(t *testing.T) {
	h, store, gw, publisher := newHandler()
	gw.On("GetStatus", mock.Anything, externalID).Return(&gateway.TransactionStatus{
		OrderID: externalID, TransactionStatus: gateway.StatusDeny,
	}, nil).Once()
	store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Once()
	store.On("GetProduct", mock.Anything, "p1").Return(&models.Product{Id: "p1"}, nil).Once()
	store.On("SettleOrder", mock.Anything, mock.MatchedBy(func(s *models.Settlement) bool {
		return s.Status == models.PaymentFailed && len(s.Restock) == 1
	})).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	rr := httptest.NewRecorder()
	h.PaymentError(rr, httptest.NewRequest(http.MethodGet, "/api/payment/error", nil), api.PaymentRedirectParams{
		OrderId: ptr(externalID),
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "PAYMENT_ERROR")
	store.AssertExpectations(t)
}

func TestPaymentPending(t *testing.T) {
	h, store, gw, _ := newHandler()

	rr := httptest.NewRecorder()
	h.PaymentPending(rr, httptest.NewRequest(http.MethodGet, "/api/payment/pending", nil), api.PaymentRedirectParams{
		OrderId: ptr(externalID),
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), "PAYMENT_PENDING")
	gw.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetOrderByExternalID", mock.Anything, mock.Anything)
}

func TestPaymentWebhook(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, store, gw, publisher := newHandler()
		gw.On("ParseNotification", mock.Anything, []byte(`{"order_id":"x"}`)).Return(&gateway.TransactionStatus{
			OrderID: externalID, TransactionStatus: gateway.StatusSettlement, GrossAmount: 25000,
		}, nil).Once()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Once()
		store.On("SettleOrder", mock.Anything, mock.Anything).Return(true, nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

		rr := httptest.NewRecorder()
		h.PaymentWebhook(rr, httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{"order_id":"x"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
		store.AssertExpectations(t)
	})

	t.Run("Duplicate Is Acknowledged", func(t *testing.T) {
		h, store, gw, publisher := newHandler()
		paid := pendingOrder()
		paid.PaymentStatus = models.PaymentPaid
		gw.On("ParseNotification", mock.Anything, mock.Anything).Return(&gateway.TransactionStatus{
			OrderID: externalID, TransactionStatus: gateway.StatusSettlement, GrossAmount: 25000,
		}, nil).Once()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(paid, nil).Once()

		rr := httptest.NewRecorder()
		h.PaymentWebhook(rr, httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		store.AssertNotCalled(t, "SettleOrder", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Signature", func(t *testing.T) {
		h, _, gw, _ := newHandler()
		gw.On("ParseNotification", mock.Anything, mock.Anything).Return(nil, gateway.ErrInvalidSignature).Once()

		rr := httptest.NewRecorder()
		h.PaymentWebhook(rr, httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Unknown Order", func(t *testing.T) {
		h, store, gw, _ := newHandler()
		gw.On("ParseNotification", mock.Anything, mock.Anything).Return(&gateway.TransactionStatus{
			OrderID: "ORD-unknown", TransactionStatus: gateway.StatusSettlement,
		}, nil).Once()
		store.On("GetOrderByExternalID", mock.Anything, "ORD-unknown").Return(nil, storage.ErrNotFound).Once()

		rr := httptest.NewRecorder()
		h.PaymentWebhook(rr, httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Amount Mismatch", func(t *testing.T) {
		h, store, gw, _ := newHandler()
		gw.On("ParseNotification", mock.Anything, mock.Anything).Return(&gateway.TransactionStatus{
			OrderID: externalID, TransactionStatus: gateway.StatusSettlement, GrossAmount: 1000,
		}, nil).Once()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Once()

		rr := httptest.NewRecorder()
		h.PaymentWebhook(rr, httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		store.AssertNotCalled(t, "SettleOrder", mock.Anything, mock.Anything)
	})
}

func TestGetPaymentStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, store, gw, _ := newHandler()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Twice()
		gw.On("GetStatus", mock.Anything, externalID).Return(&gateway.TransactionStatus{
			OrderID: externalID, TransactionStatus: gateway.StatusPending, PaymentType: "bank_transfer",
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/payment/status/"+externalID, nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
		rr := httptest.NewRecorder()

		h.GetPaymentStatus(rr, req, externalID)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"payment_status":"pending"`)
		assert.Contains(t, rr.Body.String(), `"payment_type":"bank_transfer"`)
		store.AssertExpectations(t)
	})

	t.Run("Other Owner", func(t *testing.T) {
		h, store, gw, _ := newHandler()
		store.On("GetOrderByExternalID", mock.Anything, externalID).Return(pendingOrder(), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/payment/status/"+externalID, nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "user-2"))
		rr := httptest.NewRecorder()

		h.GetPaymentStatus(rr, req, externalID)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		gw.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
	})
}
