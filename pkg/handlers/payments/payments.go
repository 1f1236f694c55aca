package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	ordersvc "github.com/chris/store-payments/pkg/orders"
	"go.uber.org/zap"
)

const maxNotificationBytes = 1 << 20

// PaymentsHandler serves gateway redirects, webhooks and status polling.
type PaymentsHandler struct {
	Orders *ordersvc.Service
}

// NewPaymentsHandler creates a new PaymentsHandler.
func NewPaymentsHandler(svc *ordersvc.Service) *PaymentsHandler {
	return &PaymentsHandler{Orders: svc}
}

// PaymentFinish renders the success page after asking the gateway for the
// real status. Redirect query parameters are never trusted on their own.
func (h *PaymentsHandler) PaymentFinish(w http.ResponseWriter, r *http.Request, params api.PaymentRedirectParams) {
	orderID, status := h.refresh(r, params)
	renderPage(w, r, finishPage(orderID, status))
}

// PaymentError renders the failure page and reconciles the order.
func (h *PaymentsHandler) PaymentError(w http.ResponseWriter, r *http.Request, params api.PaymentRedirectParams) {
	orderID, status := h.refresh(r, params)
	renderPage(w, r, errorPage(orderID, status))
}

// PaymentPending renders the pending page. Pending is never terminal, so
// nothing is reconciled.
func (h *PaymentsHandler) PaymentPending(w http.ResponseWriter, r *http.Request, params api.PaymentRedirectParams) {
	renderPage(w, r, pendingPage(deref(params.OrderId), "pending"))
}

// refresh reconciles the order named by the redirect and returns the status to
// show. Failures are logged only: the page must render for the client to
// detect completion.
func (h *PaymentsHandler) refresh(r *http.Request, params api.PaymentRedirectParams) (string, string) {
	orderID := deref(params.OrderId)
	status := deref(params.TransactionStatus)
	if orderID == "" {
		return "", status
	}

	result, err := h.Orders.RefreshStatus(r.Context(), orderID, ordersvc.SourceRedirect)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to reconcile payment redirect",
			zap.String("external_order_id", orderID),
			zap.String("reported_status", status),
			zap.Error(err))
		return orderID, status
	}
	return orderID, string(result.Status)
}

// PaymentWebhook verifies and applies an asynchronous gateway notification.
// Any non-2xx reply makes the gateway redeliver.
func (h *PaymentsHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		response.Error(w, r, "", fmt.Errorf("%w: %v", response.ErrInvalidBody, err))
		return
	}

	result, err := h.Orders.HandleNotification(r.Context(), body)
	if err != nil {
		response.Error(w, r, "Failed to process notification", err)
		return
	}

	logging.FromContext(r.Context()).Info("payment notification processed",
		zap.String("external_order_id", result.Order.ExternalOrderId),
		zap.String("outcome", string(result.Outcome)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(api.WebhookAck{Status: "ok"}); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetPaymentStatus reconciles one of the caller's orders with the gateway and reports both views.
func (h *PaymentsHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request, orderId string) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	report, err := h.Orders.PaymentStatus(r.Context(), userID, orderId)
	if err != nil {
		response.Error(w, r, "Failed to retrieve payment status", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiPaymentStatus(report.Order, report.Gateway))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
