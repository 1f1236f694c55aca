package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// InvestmentStore defines the interface for wallet-funded investments.
type InvestmentStore interface {
	// CreateInvestment persists the investment and applies the purchase entry atomically.
	CreateInvestment(ctx context.Context, inv *models.Investment, entry *models.LedgerEntry) (*models.Wallet, error)

	// GetInvestment retrieves one of a user's investments.
	GetInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error)

	// ListInvestments retrieves a user's investments, optionally filtered by status.
	ListInvestments(ctx context.Context, userID string, status models.InvestmentStatus) ([]models.Investment, error)

	// SellInvestment marks an active investment sold and applies the sale entry atomically.
	// It returns ErrInvestmentNotActive when the investment was already sold.
	SellInvestment(ctx context.Context, inv *models.Investment, entry *models.LedgerEntry) (*models.Wallet, error)
}
