// Package midtrans implements the payment gateway against the Midtrans Snap and Core APIs.
package midtrans

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chris/store-payments/pkg/gateway"
)

const (
	SandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	ProductionSnapURL = "https://app.midtrans.com/snap/v1/transactions"
	SandboxCoreURL    = "https://api.sandbox.midtrans.com"
	ProductionCoreURL = "https://api.midtrans.com"
)

// Client talks to Midtrans using the merchant server key.
type Client struct {
	HTTPClient *http.Client
	ServerKey  string
	SnapURL    string
	CoreURL    string
}

// New creates a Client for the sandbox or production environment.
// Every request is bounded by timeout.
func New(serverKey string, production bool, timeout time.Duration) *Client {
	c := &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		ServerKey:  serverKey,
		SnapURL:    SandboxSnapURL,
		CoreURL:    SandboxCoreURL,
	}
	if production {
		c.SnapURL = ProductionSnapURL
		c.CoreURL = ProductionCoreURL
	}
	return c
}

// Make sure we conform to the interface
var _ gateway.Gateway = (*Client)(nil)

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	ItemDetails        []gateway.Item     `json:"item_details"`
	CustomerDetails    gateway.Customer   `json:"customer_details"`
	Callbacks          gateway.Callbacks  `json:"callbacks"`
}

type errorResponse struct {
	ErrorMessages []string `json:"error_messages"`
	StatusMessage string   `json:"status_message"`
}

// statusResponse is shared by the status endpoint and HTTP notifications.
type statusResponse struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// CreateSession opens a Snap checkout session.
func (c *Client) CreateSession(ctx context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	body, err := json.Marshal(snapRequest{
		TransactionDetails: transactionDetails{OrderID: req.OrderID, GrossAmount: req.GrossAmount},
		ItemDetails:        req.Items,
		CustomerDetails:    req.Customer,
		Callbacks:          req.Callbacks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SnapURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build snap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var session gateway.Session
	if err := c.do(httpReq, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, errors.New("snap response did not include a token")
	}
	return &session, nil
}

// GetStatus queries the Core API for the status of an order's transaction.
func (c *Client) GetStatus(ctx context.Context, orderID string) (*gateway.TransactionStatus, error) {
	url := fmt.Sprintf("%s/v2/%s/status", c.CoreURL, orderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	var resp statusResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}

	// The Core API reports application errors in the body with HTTP 200.
	switch {
	case resp.StatusCode == "404":
		return nil, fmt.Errorf("order %s: %w", orderID, gateway.ErrTransactionNotFound)
	case !strings.HasPrefix(resp.StatusCode, "2"):
		code, _ := strconv.Atoi(resp.StatusCode)
		return nil, &gateway.Error{StatusCode: code, Messages: []string{resp.StatusMessage}}
	}

	return toTransactionStatus(&resp)
}

// ParseNotification verifies the notification signature and decodes it.
// signature_key = SHA512(order_id + status_code + gross_amount + server_key).
func (c *Client) ParseNotification(ctx context.Context, body []byte) (*gateway.TransactionStatus, error) {
	var n statusResponse
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.OrderID == "" || n.SignatureKey == "" {
		return nil, gateway.ErrInvalidSignature
	}

	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, c.ServerKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) != 1 {
		return nil, gateway.ErrInvalidSignature
	}

	return toTransactionStatus(&n)
}

// Signature computes the notification signature for the given fields.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.ServerKey, "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		messages := errResp.ErrorMessages
		if len(messages) == 0 && errResp.StatusMessage != "" {
			messages = []string{errResp.StatusMessage}
		}
		return &gateway.Error{StatusCode: resp.StatusCode, Messages: messages}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func toTransactionStatus(r *statusResponse) (*gateway.TransactionStatus, error) {
	amount, err := ParseAmount(r.GrossAmount)
	if err != nil {
		return nil, err
	}
	return &gateway.TransactionStatus{
		OrderID:           r.OrderID,
		TransactionID:     r.TransactionID,
		TransactionStatus: r.TransactionStatus,
		FraudStatus:       r.FraudStatus,
		StatusCode:        r.StatusCode,
		PaymentType:       r.PaymentType,
		GrossAmount:       amount,
	}, nil
}

// ParseAmount converts a gross amount such as "20000.00" into whole units.
// An empty string yields zero. Non-zero fractional parts are rejected.
func ParseAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	whole, frac, _ := strings.Cut(s, ".")
	if strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("gross amount %q has a fractional part", s)
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gross amount %q: %w", s, err)
	}
	return n, nil
}
