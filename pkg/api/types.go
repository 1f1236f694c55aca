// Package api holds the HTTP request and response types and the server
// interface the handlers implement.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Response is the envelope every JSON endpoint replies with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Page is one page of a cursor-paginated list.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// RegisterRequest defines model for RegisterRequest.
type RegisterRequest struct {
	Name     string              `json:"name"`
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Phone    *string             `json:"phone,omitempty"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

// User defines model for User.
type User struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse defines model for AuthResponse.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// StoreInput is the body of store create and update requests.
type StoreInput struct {
	StoreName   string  `json:"store_name"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`
	LogoUrl     *string `json:"logo_url,omitempty"`
}

// Store defines model for Store.
type Store struct {
	Id          string    `json:"id"`
	UserId      string    `json:"user_id"`
	StoreName   string    `json:"store_name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	LogoUrl     string    `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput is the body of product create and update requests.
// StoreId and Stock are only read on create.
type ProductInput struct {
	StoreId     string  `json:"store_id,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price"`
	Stock       int64   `json:"stock"`
	Category    *string `json:"category,omitempty"`
	ImageUrl    *string `json:"image_url,omitempty"`
}

// Product defines model for Product.
type Product struct {
	Id          string    `json:"id"`
	StoreId     string    `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int64     `json:"stock"`
	Category    string    `json:"category,omitempty"`
	ImageUrl    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewOrderItem defines model for NewOrderItem.
type NewOrderItem struct {
	ProductId string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CustomerDetails defines model for CustomerDetails.
type CustomerDetails struct {
	Name  *string              `json:"name,omitempty"`
	Email *openapi_types.Email `json:"email,omitempty"`
	Phone *string              `json:"phone,omitempty"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	StoreId  string           `json:"store_id"`
	Items    []NewOrderItem   `json:"items"`
	Discount *int64           `json:"discount,omitempty"`
	Customer *CustomerDetails `json:"customer,omitempty"`
}

// Checkout defines model for Checkout.
type Checkout struct {
	OrderId         string `json:"order_id"`
	ExternalOrderId string `json:"external_order_id"`
	TotalAmount     int64  `json:"total_amount"`
	Token           string `json:"token"`
	RedirectUrl     string `json:"redirect_url"`
}

// OrderItem defines model for OrderItem.
type OrderItem struct {
	ProductId   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// Customer defines model for Customer.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderPaymentStatus defines model for Order.PaymentStatus.
type OrderPaymentStatus string

const (
	OrderPaymentStatusPending OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid    OrderPaymentStatus = "paid"
	OrderPaymentStatusFailed  OrderPaymentStatus = "failed"
)

// Order defines model for Order.
type Order struct {
	Id              string             `json:"id"`
	StoreId         string             `json:"store_id"`
	ExternalOrderId string             `json:"external_order_id"`
	Items           []OrderItem        `json:"items"`
	Discount        int64              `json:"discount"`
	TotalAmount     int64              `json:"total_amount"`
	PaymentStatus   OrderPaymentStatus `json:"payment_status"`
	GatewayStatus   *string            `json:"gateway_status,omitempty"`
	Customer        Customer           `json:"customer"`
	RedirectUrl     *string            `json:"redirect_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	SettledAt       *time.Time         `json:"settled_at,omitempty"`
}

// PaymentRedirectParams defines parameters for the browser redirect pages.
type PaymentRedirectParams struct {
	OrderId           *string `form:"order_id" json:"order_id,omitempty"`
	TransactionStatus *string `form:"transaction_status" json:"transaction_status,omitempty"`
	StatusCode        *string `form:"status_code" json:"status_code,omitempty"`
}

// PaymentStatus defines model for PaymentStatus.
type PaymentStatus struct {
	OrderId           string             `json:"order_id"`
	PaymentStatus     OrderPaymentStatus `json:"payment_status"`
	TotalAmount       int64              `json:"total_amount"`
	TransactionStatus *string            `json:"transaction_status,omitempty"`
	FraudStatus       *string            `json:"fraud_status,omitempty"`
	PaymentType       *string            `json:"payment_type,omitempty"`
	GrossAmount       *int64             `json:"gross_amount,omitempty"`
}

// WebhookAck defines model for WebhookAck.
type WebhookAck struct {
	Status string `json:"status"`
}

// Wallet defines model for Wallet.
type Wallet struct {
	UserId    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletAmount is the body of top-up and withdrawal requests.
type WalletAmount struct {
	Amount      int64   `json:"amount"`
	Description *string `json:"description,omitempty"`
}

// NewInvestment defines model for NewInvestment.
type NewInvestment struct {
	WalletAddress string  `json:"wallet_address"`
	Asset         *string `json:"asset,omitempty"`
	Amount        int64   `json:"amount"`
}

// SellInvestmentRequest defines model for SellInvestmentRequest.
type SellInvestmentRequest struct {
	SellAmount int64 `json:"sell_amount"`
}

// Investment defines model for Investment.
type Investment struct {
	Id            string     `json:"id"`
	WalletAddress string     `json:"wallet_address"`
	Asset         string     `json:"asset,omitempty"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	SellAmount    *int64     `json:"sell_amount,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
}

// InvestmentResult is returned by buy and sell.
type InvestmentResult struct {
	Investment Investment `json:"investment"`
	Wallet     Wallet     `json:"wallet"`
}

// ListInvestmentsParams defines parameters for ListInvestments.
type ListInvestmentsParams struct {
	Status *string `form:"status" json:"status,omitempty"`
}

// FinancialSummary defines model for FinancialSummary.
type FinancialSummary struct {
	TotalIncome     int64 `json:"total_income"`
	TotalExpense    int64 `json:"total_expense"`
	TotalInvestment int64 `json:"total_investment"`
	TotalGain       int64 `json:"total_gain"`
	NetIncome       int64 `json:"net_income"`
	WalletBalance   int64 `json:"wallet_balance"`
}

// FinancialRecord defines model for FinancialRecord.
type FinancialRecord struct {
	Id          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	ReferenceId *string   `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFinancialRecordsParams defines parameters for ListFinancialRecords.
type ListFinancialRecordsParams struct {
	Type   *string `form:"type" json:"type,omitempty"`
	Limit  *int32  `form:"limit" json:"limit,omitempty"`
	Cursor *string `form:"cursor" json:"cursor,omitempty"`
}

// Activity defines model for Activity.
type Activity struct {
	Id           string    `json:"id"`
	ActivityType string    `json:"activity_type"`
	Amount       int64     `json:"amount"`
	Description  string    `json:"description"`
	ReferenceId  *string   `json:"reference_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListActivitiesParams defines parameters for ListActivities.
type ListActivitiesParams struct {
	ActivityType *string `form:"activity_type" json:"activity_type,omitempty"`
	Limit        *int32  `form:"limit" json:"limit,omitempty"`
	Cursor       *string `form:"cursor" json:"cursor,omitempty"`
}

// DashboardStats defines model for DashboardStats.
type DashboardStats struct {
	TotalStores   int   `json:"total_stores"`
	TotalProducts int   `json:"total_products"`
	TotalOrders   int   `json:"total_orders"`
	PaidOrders    int   `json:"paid_orders"`
	Revenue       int64 `json:"revenue"`
	WalletBalance int64 `json:"wallet_balance"`
}

// NewTransactionHistory defines model for NewTransactionHistory.
type NewTransactionHistory struct {
	OrderId         *string          `json:"order_id,omitempty"`
	ExternalOrderId *string          `json:"external_order_id,omitempty"`
	TotalAmount     int64            `json:"total_amount"`
	DiscountAmount  int64            `json:"discount_amount"`
	PaymentMethod   string           `json:"payment_method"`
	CouponsUsed     []map[string]any `json:"coupons_used,omitempty"`
	Items           []map[string]any `json:"items,omitempty"`
	Status          string           `json:"status"`
}

// TransactionHistory defines model for TransactionHistory.
type TransactionHistory struct {
	Id              string           `json:"id"`
	OrderId         *string          `json:"order_id,omitempty"`
	ExternalOrderId *string          `json:"external_order_id,omitempty"`
	TotalAmount     int64            `json:"total_amount"`
	DiscountAmount  int64            `json:"discount_amount"`
	PaymentMethod   string           `json:"payment_method"`
	CouponsUsed     []map[string]any `json:"coupons_used,omitempty"`
	Items           []map[string]any `json:"items,omitempty"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ListTransactionHistoryParams defines parameters for ListTransactionHistory.
type ListTransactionHistoryParams struct {
	Status *string `form:"status" json:"status,omitempty"`
	Limit  *int32  `form:"limit" json:"limit,omitempty"`
	Cursor *string `form:"cursor" json:"cursor,omitempty"`
}

// NewChatbotHistory defines model for NewChatbotHistory.
type NewChatbotHistory struct {
	Command       string  `json:"command"`
	InputText     *string `json:"input_text,omitempty"`
	ResponseText  *string `json:"response_text,omitempty"`
	ActionResult  *string `json:"action_result,omitempty"`
	RelatedEntity *string `json:"related_entity,omitempty"`
}

// ChatbotHistory defines model for ChatbotHistory.
type ChatbotHistory struct {
	Id            string    `json:"id"`
	Command       string    `json:"command"`
	InputText     *string   `json:"input_text,omitempty"`
	ResponseText  *string   `json:"response_text,omitempty"`
	ActionResult  *string   `json:"action_result,omitempty"`
	RelatedEntity *string   `json:"related_entity,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListChatbotHistoryParams defines parameters for ListChatbotHistory.
type ListChatbotHistoryParams struct {
	Limit  *int32  `form:"limit" json:"limit,omitempty"`
	Cursor *string `form:"cursor" json:"cursor,omitempty"`
}

// ChatbotCommand defines model for ChatbotCommand.
type ChatbotCommand struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// ChatbotResult defines model for ChatbotResult.
type ChatbotResult struct {
	Command       string         `json:"command"`
	ActionResult  string         `json:"action_result"`
	RelatedEntity *string        `json:"related_entity,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// Health defines model for Health.
type Health struct {
	Status             string            `json:"status"`
	Timestamp          time.Time         `json:"timestamp"`
	Services           map[string]string `json:"services"`
	ActiveGatewayCalls int64             `json:"active_gateway_calls"`
}
