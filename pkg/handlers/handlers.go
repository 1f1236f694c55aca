// Package handlers assembles the per-resource handlers into the API server.
package handlers

import (
	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/auth"
	"github.com/chris/store-payments/pkg/handlers/accounts"
	"github.com/chris/store-payments/pkg/handlers/chatbot"
	"github.com/chris/store-payments/pkg/handlers/dashboard"
	"github.com/chris/store-payments/pkg/handlers/financial"
	"github.com/chris/store-payments/pkg/handlers/health"
	"github.com/chris/store-payments/pkg/handlers/history"
	"github.com/chris/store-payments/pkg/handlers/investments"
	"github.com/chris/store-payments/pkg/handlers/orders"
	"github.com/chris/store-payments/pkg/handlers/payments"
	"github.com/chris/store-payments/pkg/handlers/products"
	"github.com/chris/store-payments/pkg/handlers/stores"
	"github.com/chris/store-payments/pkg/handlers/wallets"
	"github.com/chris/store-payments/pkg/ledger"
	ordersvc "github.com/chris/store-payments/pkg/orders"
	"github.com/chris/store-payments/pkg/storage"
)

// ApiHandler implements the server interface by composing one handler per resource.
type ApiHandler struct {
	*accounts.AccountsHandler
	*stores.StoresHandler
	*products.ProductsHandler
	*orders.OrdersHandler
	*payments.PaymentsHandler
	*wallets.WalletsHandler
	*investments.InvestmentsHandler
	*financial.FinancialHandler
	*dashboard.DashboardHandler
	*history.HistoryHandler
	*chatbot.ChatbotHandler
	*health.HealthHandler
}

// Dependencies are the services and storage the handlers are built from.
type Dependencies struct {
	Store  storage.ApiStore
	Auth   *auth.Service
	Orders *ordersvc.Service
	Ledger *ledger.Service
	// Gateway reports in-flight gateway calls for the health endpoint. May be nil.
	Gateway health.InFlightCounter
	// Events names the configured event sink for the health endpoint.
	Events string
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(deps Dependencies) *ApiHandler {
	return &ApiHandler{
		AccountsHandler:    accounts.NewAccountsHandler(deps.Auth),
		StoresHandler:      stores.NewStoresHandler(deps.Store),
		ProductsHandler:    products.NewProductsHandler(deps.Store),
		OrdersHandler:      orders.NewOrdersHandler(deps.Orders),
		PaymentsHandler:    payments.NewPaymentsHandler(deps.Orders),
		WalletsHandler:     wallets.NewWalletsHandler(deps.Ledger),
		InvestmentsHandler: investments.NewInvestmentsHandler(deps.Ledger),
		FinancialHandler:   financial.NewFinancialHandler(deps.Ledger),
		DashboardHandler:   dashboard.NewDashboardHandler(deps.Store, deps.Ledger),
		HistoryHandler:     history.NewHistoryHandler(deps.Store),
		ChatbotHandler:     chatbot.NewChatbotHandler(deps.Store, deps.Ledger, deps.Orders),
		HealthHandler:      health.NewHealthHandler(deps.Store, deps.Gateway, deps.Events),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)
