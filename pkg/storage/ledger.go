package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListFinancialRecords retrieves a user's financial records, newest first.
	ListFinancialRecords(ctx context.Context, q RecordQuery) (*Page[models.FinancialRecord], error)

	// ListActivities retrieves a user's activity log, newest first.
	ListActivities(ctx context.Context, q ActivityQuery) (*Page[models.ActivityLog], error)

	// SumFinancialRecords totals a user's record amounts per type.
	SumFinancialRecords(ctx context.Context, userID string) (map[models.RecordType]int64, error)
}
