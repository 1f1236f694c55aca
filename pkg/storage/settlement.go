package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// SettlementStore defines the privileged interface for the terminal transition of an order.
// The transition is guarded by the stored status, so it is applied at most once
// no matter how many times the same signal is delivered.
type SettlementStore interface {
	// SettleOrder moves a pending order to its terminal status together with its
	// ledger or restock side effects. It returns false, with no error, when the
	// order had already left the pending state.
	SettleOrder(ctx context.Context, settlement *models.Settlement) (bool, error)
}
