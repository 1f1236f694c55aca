package events

import "time"

// EventType defines the type of a domain event.
type EventType string

const (
	// EventOrderCreated is emitted after an order and its stock reservation commit.
	EventOrderCreated EventType = "order.created"
	// EventOrderPaid is emitted once when an order transitions to paid.
	EventOrderPaid EventType = "order.paid"
	// EventOrderFailed is emitted once when an order transitions to failed.
	EventOrderFailed EventType = "order.failed"
	// EventWalletChanged is for messages that update wallet balances.
	EventWalletChanged EventType = "wallet.changed"
)

// Event represents a generic domain event. Key selects the partition.
type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"-"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// OrderPayload is the payload for order events.
type OrderPayload struct {
	OrderID         string `json:"order_id"`
	ExternalOrderID string `json:"external_order_id"`
	StoreID         string `json:"store_id"`
	UserID          string `json:"user_id"`
	TotalAmount     int64  `json:"total_amount"`
	Status          string `json:"status"`
}

// WalletChangedPayload is the payload for a wallet.changed event.
type WalletChangedPayload struct {
	UserID       string `json:"user_id"`
	ActivityType string `json:"activity_type"`
	ReferenceID  string `json:"reference_id,omitempty"`
	Change       int64  `json:"change"`
	NewBalance   int64  `json:"new_balance"`
}
