// Package chatbot serves the assistant command endpoints. Every processed
// command is written to the caller's chatbot history, including failures.
package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
	"github.com/chris/store-payments/pkg/models"
	ordersvc "github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/storage"
	"go.uber.org/zap"
)

const (
	CommandCheckBalance = "check_balance"
	CommandCreatePromo  = "create_promo"
	CommandMakePayment  = "make_payment"

	actionSuccess = "success"
	actionFailed  = "failed"
)

var errInvalidCommand = errors.New("invalid command")

// Store is the storage the chatbot needs: its own log plus store lookups for
// promo ownership checks.
type Store interface {
	storage.ChatbotStore
	storage.StoreReader
}

// ChatbotHandler records and executes assistant commands.
type ChatbotHandler struct {
	Store  Store
	Ledger *ledger.Service
	Orders *ordersvc.Service
}

// NewChatbotHandler creates a new ChatbotHandler.
func NewChatbotHandler(store Store, ledgerSvc *ledger.Service, orderSvc *ordersvc.Service) *ChatbotHandler {
	return &ChatbotHandler{Store: store, Ledger: ledgerSvc, Orders: orderSvc}
}

// CreateChatbotHistory records a command the client handled itself.
func (h *ChatbotHandler) CreateChatbotHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.NewChatbotHistory
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	in.Command = strings.TrimSpace(in.Command)
	if in.Command == "" {
		response.Fail(w, http.StatusBadRequest, "Command is required")
		return
	}

	created, err := h.Store.CreateChatbotHistory(r.Context(), mapping.ToDomainChatbotHistory(userID, &in))
	if err != nil {
		response.Error(w, r, "Failed to record chatbot history", err)
		return
	}

	response.JSON(w, http.StatusCreated, "Chatbot history recorded", mapping.ToApiChatbotHistory(created))
}

// ListChatbotHistory returns one page of the caller's commands, newest first.
func (h *ChatbotHandler) ListChatbotHistory(w http.ResponseWriter, r *http.Request, params api.ListChatbotHistoryParams) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	page, err := h.Store.ListChatbotHistory(r.Context(), storage.ChatbotQuery{
		UserID:      userID,
		ListOptions: mapping.ListOptions(params.Limit, params.Cursor),
	})
	if err != nil {
		response.Error(w, r, "Failed to get chatbot history", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiPage(page, mapping.ToApiChatbotHistory))
}

// outcome is the result of one executed command.
type outcome struct {
	message string
	entity  string
	data    map[string]any
}

// ProcessChatbotCommand executes a command and records it. Unknown commands
// and bad parameters are recorded as failed and reported as 400s.
func (h *ChatbotHandler) ProcessChatbotCommand(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var in api.ChatbotCommand
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, "", err)
		return
	}
	command := strings.TrimSpace(in.Command)
	if command == "" {
		response.Fail(w, http.StatusBadRequest, "Command is required")
		return
	}

	ctx := r.Context()
	out, runErr := h.run(ctx, userID, command, in.Params)

	entry := &models.ChatbotHistory{
		UserId:        userID,
		Command:       command,
		InputText:     encodeParams(in.Params),
		ResponseText:  out.message,
		ActionResult:  actionSuccess,
		RelatedEntity: out.entity,
	}
	if runErr != nil {
		entry.ActionResult = actionFailed
		entry.ResponseText = failureText(runErr)
	}
	if _, err := h.Store.CreateChatbotHistory(ctx, entry); err != nil {
		if runErr == nil {
			response.Error(w, r, "Failed to process command", err)
			return
		}
		logging.FromContext(ctx).Warn("failed to record chatbot command",
			zap.String("command", command),
			zap.Error(err))
	}

	if runErr != nil {
		if errors.Is(runErr, errInvalidCommand) {
			response.Fail(w, http.StatusBadRequest, runErr.Error())
			return
		}
		response.Error(w, r, "Failed to process command", runErr)
		return
	}

	result := api.ChatbotResult{Command: command, ActionResult: actionSuccess, Data: out.data}
	if out.entity != "" {
		result.RelatedEntity = &out.entity
	}
	response.JSON(w, http.StatusOK, out.message, result)
}

func (h *ChatbotHandler) run(ctx context.Context, userID, command string, params map[string]any) (outcome, error) {
	switch command {
	case CommandCheckBalance:
		return h.checkBalance(ctx, userID)
	case CommandCreatePromo:
		return h.createPromo(ctx, userID, params)
	case CommandMakePayment:
		return h.makePayment(ctx, userID, params)
	default:
		return outcome{}, fmt.Errorf("%w: unknown command %q", errInvalidCommand, command)
	}
}

func (h *ChatbotHandler) checkBalance(ctx context.Context, userID string) (outcome, error) {
	wallet, err := h.Ledger.GetWallet(ctx, userID)
	if err != nil {
		return outcome{entity: "wallet"}, err
	}
	return outcome{
		message: fmt.Sprintf("Your current balance is %d", wallet.Balance),
		entity:  "wallet",
		data:    map[string]any{"balance": wallet.Balance},
	}, nil
}

// createPromo validates a promo against a store the caller owns. The promo
// itself lives only in the chatbot history.
func (h *ChatbotHandler) createPromo(ctx context.Context, userID string, params map[string]any) (outcome, error) {
	out := outcome{entity: "promo"}
	storeID := stringParam(params, "store_id")
	code := stringParam(params, "promo_code")
	if storeID == "" || code == "" {
		return out, fmt.Errorf("%w: store_id and promo_code are required", errInvalidCommand)
	}
	pct, ok := numberParam(params, "discount_percentage")
	if !ok || math.IsNaN(pct) || pct <= 0 || pct > 100 {
		return out, fmt.Errorf("%w: discount_percentage must be between 0 and 100", errInvalidCommand)
	}

	store, err := h.Store.GetStore(ctx, storeID)
	if err != nil {
		return out, err
	}
	if store.UserId != userID {
		return out, fmt.Errorf("store %s: %w", storeID, storage.ErrAccessDenied)
	}

	out.message = fmt.Sprintf("Promo %s created with %s%% discount", code, strconv.FormatFloat(pct, 'f', -1, 64))
	out.data = map[string]any{"store_id": storeID, "promo_code": code, "discount_percentage": pct}
	return out, nil
}

// makePayment reports what the caller has to do to pay an order. Payment
// itself only ever happens through the gateway.
func (h *ChatbotHandler) makePayment(ctx context.Context, userID string, params map[string]any) (outcome, error) {
	out := outcome{entity: "order"}
	orderID := stringParam(params, "order_id")
	if orderID == "" {
		return out, fmt.Errorf("%w: order_id is required", errInvalidCommand)
	}

	order, err := h.Orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		return out, err
	}

	out.data = map[string]any{
		"order_id":          order.Id,
		"external_order_id": order.ExternalOrderId,
		"payment_status":    string(order.PaymentStatus),
		"total_amount":      order.TotalAmount,
	}
	switch order.PaymentStatus {
	case models.PaymentPaid:
		out.message = fmt.Sprintf("Order %s is already paid", order.ExternalOrderId)
	case models.PaymentPending:
		out.message = fmt.Sprintf("Payment for order %s is waiting; complete it on the payment page", order.ExternalOrderId)
		out.data["snap_token"] = order.SnapToken
		out.data["redirect_url"] = order.RedirectURL
	default:
		out.message = fmt.Sprintf("Order %s is %s and can no longer be paid", order.ExternalOrderId, order.PaymentStatus)
	}
	return out, nil
}

// failureText is what the history keeps for a failed command. Server-side
// errors are not exposed.
func failureText(err error) string {
	if errors.Is(err, errInvalidCommand) || response.Status(err) < http.StatusInternalServerError {
		return err.Error()
	}
	return "Failed to process command"
}

func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	b, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return string(b)
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return strings.TrimSpace(s)
}

// numberParam accepts JSON numbers and numeric strings.
func numberParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
