package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// WalletStore defines the interface for managing wallets.
type WalletStore interface {
	// GetWallet retrieves a user's wallet by their user ID.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// CreateWallet creates a new wallet for a user.
	CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)

	// ApplyLedgerEntry adjusts the balance and appends the entry's records and
	// activity in one transaction. Debits fail with ErrInsufficientFunds when the
	// balance read inside the transaction cannot cover them.
	ApplyLedgerEntry(ctx context.Context, entry *models.LedgerEntry) (*models.Wallet, error)
}
