package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// HistoryStore defines the interface for client-submitted transaction receipts.
type HistoryStore interface {
	CreateTransactionHistory(ctx context.Context, h *models.TransactionHistory) (*models.TransactionHistory, error)
	ListTransactionHistory(ctx context.Context, q HistoryQuery) (*Page[models.TransactionHistory], error)
}

// ChatbotStore defines the interface for the assistant command log.
type ChatbotStore interface {
	CreateChatbotHistory(ctx context.Context, h *models.ChatbotHistory) (*models.ChatbotHistory, error)
	ListChatbotHistory(ctx context.Context, q ChatbotQuery) (*Page[models.ChatbotHistory], error)
}
