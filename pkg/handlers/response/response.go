// Package response writes the JSON envelope shared by all handlers and maps
// domain errors onto HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/auth"
	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/storage"
	"go.uber.org/zap"
)

// ErrInvalidBody is returned by Decode for malformed request bodies.
var ErrInvalidBody = errors.New("invalid request body")

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, api.Response{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, api.Response{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, body api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// Decode reads a JSON request body into dest.
func Decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	var paramErr *api.InvalidParamFormatError
	switch {
	case errors.As(err, &paramErr),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, storage.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, gateway.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrInsufficientStock),
		errors.Is(err, storage.ErrInsufficientFunds),
		errors.Is(err, storage.ErrInvestmentNotActive):
		return http.StatusConflict
	case errors.Is(err, orders.ErrAmountMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orders.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var messages = map[int]string{
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Access denied",
	http.StatusNotFound:            "Not found",
	http.StatusConflict:            "Conflict",
	http.StatusUnprocessableEntity: "Unprocessable request",
	http.StatusBadGateway:          "Payment gateway error",
	http.StatusInternalServerError: "Internal server error",
}

// Error writes the error envelope for err. Client errors carry the error text;
// server errors are logged and reported with a generic message only.
func Error(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := Status(err)
	body := api.Response{Success: false, Message: message}
	if body.Message == "" {
		body.Message = messages[status]
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(body.Message,
			zap.Int("status", status),
			zap.Error(err))
	} else {
		body.Error = err.Error()
		if body.Message == "" {
			body.Message = "Invalid request"
		}
	}

	write(w, status, body)
}

// ParamError is an api ErrorHandlerFunc reporting binding errors as 400s.
func ParamError(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, "Invalid request parameters", err)
}
