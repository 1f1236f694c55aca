// Package gateway defines the payment gateway collaborator used by the order
// orchestrator: hosted checkout sessions, status queries and signed notifications.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/store-payments/pkg/models"
)

// Transaction statuses reported by the gateway.
const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusDeny       = "deny"
	StatusExpire     = "expire"
	StatusCancel     = "cancel"

	FraudAccept    = "accept"
	FraudChallenge = "challenge"
	FraudDeny      = "deny"
)

// DiscountItemID identifies the synthetic negative line item carrying an order discount.
const DiscountItemID = "DISCOUNT"

// ErrInvalidSignature is returned when a notification fails signature verification.
var ErrInvalidSignature = errors.New("invalid notification signature")

// ErrTransactionNotFound is returned when the gateway has no transaction for an order yet.
var ErrTransactionNotFound = errors.New("transaction not found at gateway")

// Error is a non-success response from the gateway.
type Error struct {
	StatusCode int
	Messages   []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Item is one entry of the item breakdown sent with a session request.
// The sum of Price*Quantity over all items must equal the gross amount.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Customer holds the contact details shown on the hosted checkout page.
type Customer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Callbacks are the browser redirect targets after checkout.
type Callbacks struct {
	Finish  string `json:"finish,omitempty"`
	Error   string `json:"error,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// SessionRequest asks the gateway for a hosted checkout session.
type SessionRequest struct {
	OrderID     string
	GrossAmount int64
	Items       []Item
	Customer    Customer
	Callbacks   Callbacks
}

// Session is a hosted checkout session.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// TransactionStatus is the gateway's view of a transaction. GrossAmount is in
// whole currency units.
type TransactionStatus struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	PaymentType       string
	GrossAmount       int64
}

// Gateway is the payment provider collaborator.
type Gateway interface {
	// CreateSession opens a hosted checkout session.
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// GetStatus queries the authoritative status of an order's transaction.
	GetStatus(ctx context.Context, orderID string) (*TransactionStatus, error)

	// ParseNotification verifies and decodes an asynchronous notification body.
	ParseNotification(ctx context.Context, body []byte) (*TransactionStatus, error)
}

// Classify maps a gateway transaction status onto an order payment status.
// capture only counts as paid once the fraud check accepted it.
func Classify(transactionStatus, fraudStatus string) models.PaymentStatus {
	switch strings.ToLower(transactionStatus) {
	case StatusSettlement:
		return models.PaymentPaid
	case StatusCapture:
		if strings.ToLower(fraudStatus) == FraudAccept {
			return models.PaymentPaid
		}
		return models.PaymentPending
	case StatusDeny, StatusExpire, StatusCancel:
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}
