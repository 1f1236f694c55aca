package storage

import "github.com/chris/store-payments/pkg/models"

const (
	DefaultPageSize int32 = 50
	MaxPageSize     int32 = 100
)

// ListOptions carries pagination for list queries. Cursor is opaque to callers.
type ListOptions struct {
	Limit  int32
	Cursor string
}

// PageSize clamps Limit into (0, MaxPageSize].
func (o ListOptions) PageSize() int32 {
	switch {
	case o.Limit <= 0:
		return DefaultPageSize
	case o.Limit > MaxPageSize:
		return MaxPageSize
	}
	return o.Limit
}

// RecordQuery selects financial records.
type RecordQuery struct {
	UserID string
	Type   models.RecordType
	ListOptions
}

// ActivityQuery selects activity log entries.
type ActivityQuery struct {
	UserID       string
	ActivityType models.ActivityType
	ListOptions
}

// HistoryQuery selects transaction history entries.
type HistoryQuery struct {
	UserID string
	Status string
	ListOptions
}

// ChatbotQuery selects chatbot history entries.
type ChatbotQuery struct {
	UserID string
	ListOptions
}

// Page is one page of a list query. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}
