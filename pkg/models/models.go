package models

import (
	"time"
)

// PaymentStatus defines the possible payment states of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// User represents an account holder. Every user owns exactly one wallet.
type User struct {
	Id           string    `json:"id" dynamodbav:"id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	Phone        string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Wallet represents the internal domain model for a user's wallet.
type Wallet struct {
	UserId    string    `json:"user_id" dynamodbav:"user_id"`
	Balance   int64     `json:"balance" dynamodbav:"balance"`
	Version   int64     `json:"version" dynamodbav:"version"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Store is a merchant storefront owned by a single user.
type Store struct {
	Id          string    `dynamodbav:"id"`
	UserId      string    `dynamodbav:"user_id"`
	StoreName   string    `dynamodbav:"store_name"`
	Description string    `dynamodbav:"description,omitempty"`
	Address     string    `dynamodbav:"address,omitempty"`
	LogoURL     string    `dynamodbav:"logo_url,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

// Product is a catalog entry with a stock counter that never goes negative.
type Product struct {
	Id          string    `dynamodbav:"id"`
	StoreId     string    `dynamodbav:"store_id"`
	Name        string    `dynamodbav:"name"`
	Description string    `dynamodbav:"description,omitempty"`
	Price       int64     `dynamodbav:"price"`
	Stock       int64     `dynamodbav:"stock"`
	Category    string    `dynamodbav:"category,omitempty"`
	ImageURL    string    `dynamodbav:"image_url,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

// LineItem is a product reference with the unit price captured when the order was placed.
type LineItem struct {
	ProductId   string `dynamodbav:"product_id"`
	ProductName string `dynamodbav:"product_name"`
	Quantity    int64  `dynamodbav:"quantity"`
	UnitPrice   int64  `dynamodbav:"unit_price"`
}

// Subtotal returns UnitPrice * Quantity.
func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * li.Quantity
}

// Customer holds the contact details forwarded to the payment gateway.
type Customer struct {
	Name  string `dynamodbav:"name"`
	Email string `dynamodbav:"email"`
	Phone string `dynamodbav:"phone"`
}

// Order is created pending and transitions exactly once to paid or failed.
// Items and TotalAmount are immutable after creation.
type Order struct {
	Id              string        `dynamodbav:"id"`
	StoreId         string        `dynamodbav:"store_id"`
	UserId          string        `dynamodbav:"user_id"`
	ExternalOrderId string        `dynamodbav:"external_order_id"`
	Items           []LineItem    `dynamodbav:"items"`
	Discount        int64         `dynamodbav:"discount"`
	TotalAmount     int64         `dynamodbav:"total_amount"`
	PaymentStatus   PaymentStatus `dynamodbav:"payment_status"`
	GatewayStatus   string        `dynamodbav:"gateway_status,omitempty"`
	Customer        Customer      `dynamodbav:"customer"`
	SnapToken       string        `dynamodbav:"snap_token,omitempty"`
	RedirectURL     string        `dynamodbav:"redirect_url,omitempty"`
	CreatedAt       time.Time     `dynamodbav:"created_at"`
	UpdatedAt       time.Time     `dynamodbav:"updated_at"`
	SettledAt       *time.Time    `dynamodbav:"settled_at,omitempty"`
}

// RecordType classifies a financial record.
type RecordType string

const (
	RecordIncome     RecordType = "income"
	RecordExpense    RecordType = "expense"
	RecordInvestment RecordType = "investment"
	RecordGain       RecordType = "gain"
)

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	switch t {
	case RecordIncome, RecordExpense, RecordInvestment, RecordGain:
		return true
	}
	return false
}

// FinancialRecord is an append-only ledger entry. Amount carries the sign of the
// economic effect only for gain records; BalanceDelta is the signed wallet change
// the record accounts for.
type FinancialRecord struct {
	UserId       string     `dynamodbav:"user_id"`
	RecordKey    string     `dynamodbav:"record_key"`
	Id           string     `dynamodbav:"id"`
	Type         RecordType `dynamodbav:"type"`
	Amount       int64      `dynamodbav:"amount"`
	BalanceDelta int64      `dynamodbav:"balance_delta"`
	Description  string     `dynamodbav:"description"`
	ReferenceId  string     `dynamodbav:"reference_id,omitempty"`
	CreatedAt    time.Time  `dynamodbav:"created_at"`
}

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityTopup      ActivityType = "topup"
	ActivityWithdraw   ActivityType = "withdraw"
	ActivityPayment    ActivityType = "payment"
	ActivityInvestBuy  ActivityType = "invest_buy"
	ActivityInvestSell ActivityType = "invest_sell"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTopup, ActivityWithdraw, ActivityPayment, ActivityInvestBuy, ActivityInvestSell:
		return true
	}
	return false
}

// ActivityLog is an append-only, human readable event trail.
type ActivityLog struct {
	UserId       string       `dynamodbav:"user_id"`
	LogKey       string       `dynamodbav:"log_key"`
	Id           string       `dynamodbav:"id"`
	ActivityType ActivityType `dynamodbav:"activity_type"`
	Amount       int64        `dynamodbav:"amount"`
	Description  string       `dynamodbav:"description"`
	ReferenceId  string       `dynamodbav:"reference_id,omitempty"`
	CreatedAt    time.Time    `dynamodbav:"created_at"`
}

// LedgerEntry is one money-moving event: a signed wallet delta plus the records
// and the activity that explain it. It is applied atomically or not at all.
type LedgerEntry struct {
	UserId   string
	Delta    int64
	Records  []FinancialRecord
	Activity ActivityLog
}

// InvestmentStatus defines the lifecycle of an investment.
type InvestmentStatus string

const (
	InvestmentActive InvestmentStatus = "active"
	InvestmentSold   InvestmentStatus = "sold"
)

// Investment is a simple buy/sell position funded from the wallet.
type Investment struct {
	UserId        string           `dynamodbav:"user_id"`
	Id            string           `dynamodbav:"id"`
	WalletAddress string           `dynamodbav:"wallet_address"`
	Asset         string           `dynamodbav:"asset,omitempty"`
	Amount        int64            `dynamodbav:"amount"`
	Status        InvestmentStatus `dynamodbav:"status"`
	SellAmount    int64            `dynamodbav:"sell_amount,omitempty"`
	CreatedAt     time.Time        `dynamodbav:"created_at"`
	SoldAt        *time.Time       `dynamodbav:"sold_at,omitempty"`
}

// TransactionHistory is a client-submitted receipt of a checkout.
type TransactionHistory struct {
	UserId          string           `dynamodbav:"user_id"`
	HistoryKey      string           `dynamodbav:"history_key"`
	Id              string           `dynamodbav:"id"`
	OrderId         string           `dynamodbav:"order_id,omitempty"`
	ExternalOrderId string           `dynamodbav:"external_order_id,omitempty"`
	TotalAmount     int64            `dynamodbav:"total_amount"`
	DiscountAmount  int64            `dynamodbav:"discount_amount"`
	PaymentMethod   string           `dynamodbav:"payment_method"`
	CouponsUsed     []map[string]any `dynamodbav:"coupons_used,omitempty"`
	Items           []map[string]any `dynamodbav:"items,omitempty"`
	Status          string           `dynamodbav:"status"`
	CreatedAt       time.Time        `dynamodbav:"created_at"`
}

// ChatbotHistory is one assistant command issued by a user and its outcome.
type ChatbotHistory struct {
	UserId        string    `dynamodbav:"user_id"`
	HistoryKey    string    `dynamodbav:"history_key"`
	Id            string    `dynamodbav:"id"`
	Command       string    `dynamodbav:"command"`
	InputText     string    `dynamodbav:"input_text,omitempty"`
	ResponseText  string    `dynamodbav:"response_text,omitempty"`
	ActionResult  string    `dynamodbav:"action_result,omitempty"`
	RelatedEntity string    `dynamodbav:"related_entity,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
}

// Settlement describes the terminal transition of an order. The Ledger entry is
// applied only for paid transitions; Restock only for failed ones.
type Settlement struct {
	Order         *Order
	Status        PaymentStatus
	GatewayStatus string
	Ledger        *LedgerEntry
	Restock       []LineItem
	SettledAt     time.Time
}
