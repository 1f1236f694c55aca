package scheduler

import (
	"context"
	"time"
)

// MaxDelay is the longest delivery delay SQS supports for a single message.
const MaxDelay = 15 * time.Minute

// StatusCheck asks a worker to query the gateway for an order and reconcile it.
type StatusCheck struct {
	ExternalOrderID string    `json:"external_order_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
}

// Scheduler defines the interface for a component that schedules a payment status check for later processing.
type Scheduler interface {
	// ScheduleStatusCheck enqueues a status check that becomes visible after delay.
	ScheduleStatusCheck(ctx context.Context, externalOrderID string, delay time.Duration) error
}

// NoOpScheduler is used when no queue is configured.
type NoOpScheduler struct{}

// ScheduleStatusCheck does nothing.
func (NoOpScheduler) ScheduleStatusCheck(ctx context.Context, externalOrderID string, delay time.Duration) error {
	return nil
}
