package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

type contextKey string

// BearerAuthScopes is set on the request context of operations that require a
// bearer token. Authentication middleware enforces the token only when it is present.
const BearerAuthScopes contextKey = "BearerAuth.Scopes"

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /auth/register)
	Register(w http.ResponseWriter, r *http.Request)
	// (POST /auth/login)
	Login(w http.ResponseWriter, r *http.Request)
	// (GET /auth/profile)
	GetProfile(w http.ResponseWriter, r *http.Request)

	// (GET /stores)
	ListStores(w http.ResponseWriter, r *http.Request)
	// (POST /stores)
	CreateStore(w http.ResponseWriter, r *http.Request)
	// (GET /stores/{id})
	GetStore(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /stores/{id})
	UpdateStore(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /stores/{id})
	DeleteStore(w http.ResponseWriter, r *http.Request, id string)
	// (GET /stores/{id}/products)
	ListStoreProducts(w http.ResponseWriter, r *http.Request, storeId string)
	// (GET /stores/{id}/orders)
	ListStoreOrders(w http.ResponseWriter, r *http.Request, storeId string)

	// (POST /products)
	CreateProduct(w http.ResponseWriter, r *http.Request)
	// (GET /products/{id})
	GetProduct(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /products/{id})
	UpdateProduct(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /products/{id})
	DeleteProduct(w http.ResponseWriter, r *http.Request, id string)

	// (POST /orders)
	CreateOrder(w http.ResponseWriter, r *http.Request)
	// (GET /orders/{id})
	GetOrder(w http.ResponseWriter, r *http.Request, id string)

	// (GET /payment/finish)
	PaymentFinish(w http.ResponseWriter, r *http.Request, params PaymentRedirectParams)
	// (GET /payment/error)
	PaymentError(w http.ResponseWriter, r *http.Request, params PaymentRedirectParams)
	// (GET /payment/pending)
	PaymentPending(w http.ResponseWriter, r *http.Request, params PaymentRedirectParams)
	// (POST /payment/webhook)
	PaymentWebhook(w http.ResponseWriter, r *http.Request)
	// (GET /payment/status/{orderId})
	GetPaymentStatus(w http.ResponseWriter, r *http.Request, orderId string)

	// (GET /wallet)
	GetWallet(w http.ResponseWriter, r *http.Request)
	// (POST /wallet/topup)
	TopUpWallet(w http.ResponseWriter, r *http.Request)
	// (POST /wallet/withdraw)
	WithdrawWallet(w http.ResponseWriter, r *http.Request)

	// (GET /investments)
	ListInvestments(w http.ResponseWriter, r *http.Request, params ListInvestmentsParams)
	// (POST /investments)
	CreateInvestment(w http.ResponseWriter, r *http.Request)
	// (POST /investments/{id}/sell)
	SellInvestment(w http.ResponseWriter, r *http.Request, id string)

	// (GET /financial/summary)
	GetFinancialSummary(w http.ResponseWriter, r *http.Request)
	// (GET /financial/records)
	ListFinancialRecords(w http.ResponseWriter, r *http.Request, params ListFinancialRecordsParams)
	// (GET /activities)
	ListActivities(w http.ResponseWriter, r *http.Request, params ListActivitiesParams)
	// (GET /dashboard/stats)
	GetDashboardStats(w http.ResponseWriter, r *http.Request)

	// (GET /transaction-history)
	ListTransactionHistory(w http.ResponseWriter, r *http.Request, params ListTransactionHistoryParams)
	// (POST /transaction-history)
	CreateTransactionHistory(w http.ResponseWriter, r *http.Request)

	// (GET /chatbot/history)
	ListChatbotHistory(w http.ResponseWriter, r *http.Request, params ListChatbotHistoryParams)
	// (POST /chatbot/history)
	CreateChatbotHistory(w http.ResponseWriter, r *http.Request)
	// (POST /chatbot/process)
	ProcessChatbotCommand(w http.ResponseWriter, r *http.Request)

	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts routed requests into ServerInterface calls.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, secured bool, fn http.HandlerFunc) {
	if secured {
		r = r.WithContext(context.WithValue(r.Context(), BearerAuthScopes, []string{}))
	}

	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, chi.URLParam(r, name), &value)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return value, true
}

func (siw *ServerInterfaceWrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// withID binds the {id} path parameter before calling fn.
func (siw *ServerInterfaceWrapper) withID(secured bool, fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := siw.pathParam(w, r, "id")
		if !ok {
			return
		}
		siw.serve(w, r, secured, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, id)
		})
	}
}

func (siw *ServerInterfaceWrapper) plain(secured bool, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siw.serve(w, r, secured, fn)
	}
}

// GetPaymentStatus operation middleware
func (siw *ServerInterfaceWrapper) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderId, ok := siw.pathParam(w, r, "orderId")
	if !ok {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetPaymentStatus(w, r, orderId)
	})
}

func (siw *ServerInterfaceWrapper) paymentRedirect(fn func(http.ResponseWriter, *http.Request, PaymentRedirectParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params PaymentRedirectParams
		if !siw.queryParam(w, r, "order_id", &params.OrderId) ||
			!siw.queryParam(w, r, "transaction_status", &params.TransactionStatus) ||
			!siw.queryParam(w, r, "status_code", &params.StatusCode) {
			return
		}
		siw.serve(w, r, false, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, params)
		})
	}
}

// ListInvestments operation middleware
func (siw *ServerInterfaceWrapper) ListInvestments(w http.ResponseWriter, r *http.Request) {
	var params ListInvestmentsParams
	if !siw.queryParam(w, r, "status", &params.Status) {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListInvestments(w, r, params)
	})
}

// ListFinancialRecords operation middleware
func (siw *ServerInterfaceWrapper) ListFinancialRecords(w http.ResponseWriter, r *http.Request) {
	var params ListFinancialRecordsParams
	if !siw.queryParam(w, r, "type", &params.Type) ||
		!siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "cursor", &params.Cursor) {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListFinancialRecords(w, r, params)
	})
}

// ListActivities operation middleware
func (siw *ServerInterfaceWrapper) ListActivities(w http.ResponseWriter, r *http.Request) {
	var params ListActivitiesParams
	if !siw.queryParam(w, r, "activity_type", &params.ActivityType) ||
		!siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "cursor", &params.Cursor) {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListActivities(w, r, params)
	})
}

// ListTransactionHistory operation middleware
func (siw *ServerInterfaceWrapper) ListTransactionHistory(w http.ResponseWriter, r *http.Request) {
	var params ListTransactionHistoryParams
	if !siw.queryParam(w, r, "status", &params.Status) ||
		!siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "cursor", &params.Cursor) {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTransactionHistory(w, r, params)
	})
}

// ListChatbotHistory operation middleware
func (siw *ServerInterfaceWrapper) ListChatbotHistory(w http.ResponseWriter, r *http.Request) {
	var params ListChatbotHistoryParams
	if !siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "cursor", &params.Cursor) {
		return
	}
	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListChatbotHistory(w, r, params)
	})
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching the API, mounted on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/auth/register", wrapper.plain(false, si.Register))
		r.Post(options.BaseURL+"/auth/login", wrapper.plain(false, si.Login))
		r.Get(options.BaseURL+"/auth/profile", wrapper.plain(true, si.GetProfile))

		r.Get(options.BaseURL+"/stores", wrapper.plain(true, si.ListStores))
		r.Post(options.BaseURL+"/stores", wrapper.plain(true, si.CreateStore))
		r.Get(options.BaseURL+"/stores/{id}", wrapper.withID(true, si.GetStore))
		r.Put(options.BaseURL+"/stores/{id}", wrapper.withID(true, si.UpdateStore))
		r.Delete(options.BaseURL+"/stores/{id}", wrapper.withID(true, si.DeleteStore))
		r.Get(options.BaseURL+"/stores/{id}/products", wrapper.withID(true, si.ListStoreProducts))
		r.Get(options.BaseURL+"/stores/{id}/orders", wrapper.withID(true, si.ListStoreOrders))

		r.Post(options.BaseURL+"/products", wrapper.plain(true, si.CreateProduct))
		r.Get(options.BaseURL+"/products/{id}", wrapper.withID(true, si.GetProduct))
		r.Put(options.BaseURL+"/products/{id}", wrapper.withID(true, si.UpdateProduct))
		r.Delete(options.BaseURL+"/products/{id}", wrapper.withID(true, si.DeleteProduct))

		r.Post(options.BaseURL+"/orders", wrapper.plain(true, si.CreateOrder))
		r.Get(options.BaseURL+"/orders/{id}", wrapper.withID(true, si.GetOrder))

		r.Get(options.BaseURL+"/payment/finish", wrapper.paymentRedirect(si.PaymentFinish))
		r.Get(options.BaseURL+"/payment/error", wrapper.paymentRedirect(si.PaymentError))
		r.Get(options.BaseURL+"/payment/pending", wrapper.paymentRedirect(si.PaymentPending))
		r.Post(options.BaseURL+"/payment/webhook", wrapper.plain(false, si.PaymentWebhook))
		r.Get(options.BaseURL+"/payment/status/{orderId}", wrapper.GetPaymentStatus)

		r.Get(options.BaseURL+"/wallet", wrapper.plain(true, si.GetWallet))
		r.Post(options.BaseURL+"/wallet/topup", wrapper.plain(true, si.TopUpWallet))
		r.Post(options.BaseURL+"/wallet/withdraw", wrapper.plain(true, si.WithdrawWallet))

		r.Get(options.BaseURL+"/investments", wrapper.ListInvestments)
		r.Post(options.BaseURL+"/investments", wrapper.plain(true, si.CreateInvestment))
		r.Post(options.BaseURL+"/investments/{id}/sell", wrapper.withID(true, si.SellInvestment))

		r.Get(options.BaseURL+"/financial/summary", wrapper.plain(true, si.GetFinancialSummary))
		r.Get(options.BaseURL+"/financial/records", wrapper.ListFinancialRecords)
		r.Get(options.BaseURL+"/activities", wrapper.ListActivities)
		r.Get(options.BaseURL+"/dashboard/stats", wrapper.plain(true, si.GetDashboardStats))

		r.Get(options.BaseURL+"/transaction-history", wrapper.ListTransactionHistory)
		r.Post(options.BaseURL+"/transaction-history", wrapper.plain(true, si.CreateTransactionHistory))

		r.Get(options.BaseURL+"/chatbot/history", wrapper.ListChatbotHistory)
		r.Post(options.BaseURL+"/chatbot/history", wrapper.plain(true, si.CreateChatbotHistory))
		r.Post(options.BaseURL+"/chatbot/process", wrapper.plain(true, si.ProcessChatbotCommand))

		r.Get(options.BaseURL+"/health", wrapper.plain(false, si.GetHealth))
	})

	return r
}
