package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/store-payments/pkg/events"
	"github.com/chris/store-payments/pkg/gateway"
	"github.com/chris/store-payments/pkg/ledger"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Signal sources.
const (
	SourceWebhook  = "webhook"
	SourceRedirect = "redirect"
	SourcePoll     = "poll"
	SourceSweep    = "sweep"
	SourceOperator = "operator"
)

// Outcome describes what a signal did to an order.
type Outcome string

const (
	// OutcomeApplied means this signal performed the terminal transition.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the order was already terminal; nothing changed.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomePending means the signal was not terminal; nothing changed.
	OutcomePending Outcome = "pending"
)

// Signal is a gateway-reported transaction status for an order.
// GrossAmount is zero when the source does not report one.
type Signal struct {
	ExternalOrderID   string
	TransactionStatus string
	FraudStatus       string
	GrossAmount       int64
	Source            string
}

// ReconcileResult reports the stored order after a signal was applied.
type ReconcileResult struct {
	Order   *models.Order
	Status  models.PaymentStatus
	Outcome Outcome
}

// Reconcile applies a payment signal to its order. Terminal transitions happen
// at most once: the write is conditioned on the stored status still being
// pending, so repeated or out-of-order signals never revert a terminal order
// or repeat its ledger side effects.
func (s *Service) Reconcile(ctx context.Context, sig Signal) (*ReconcileResult, error) {
	ctx, span := tracer.Start(ctx, "orders.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.external_id", sig.ExternalOrderID),
		attribute.String("payment.transaction_status", sig.TransactionStatus),
		attribute.String("payment.source", sig.Source),
	)

	target := gateway.Classify(sig.TransactionStatus, sig.FraudStatus)
	logger := logging.FromContext(ctx).With(
		zap.String("external_order_id", sig.ExternalOrderID),
		zap.String("transaction_status", sig.TransactionStatus),
		zap.String("source", sig.Source),
	)

	result, err := s.reconcile(ctx, sig, target)
	if err != nil {
		s.metrics.Reconciled(sig.Source, string(target), "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconciliation failed")
		logger.Error("failed to reconcile payment", zap.Error(err))
		return nil, err
	}

	s.metrics.Reconciled(sig.Source, string(target), string(result.Outcome))
	span.SetAttributes(attribute.String("reconcile.outcome", string(result.Outcome)))
	logger.Info("payment signal reconciled",
		zap.String("order_id", result.Order.Id),
		zap.String("payment_status", string(result.Status)),
		zap.String("outcome", string(result.Outcome)))
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, sig Signal, target models.PaymentStatus) (*ReconcileResult, error) {
	order, err := s.store.GetOrderByExternalID(ctx, sig.ExternalOrderID)
	if err != nil {
		return nil, err
	}

	if !target.Terminal() {
		return &ReconcileResult{Order: order, Status: order.PaymentStatus, Outcome: OutcomePending}, nil
	}
	if order.PaymentStatus.Terminal() {
		return &ReconcileResult{Order: order, Status: order.PaymentStatus, Outcome: OutcomeDuplicate}, nil
	}

	settlement := &models.Settlement{
		Order:         order,
		Status:        target,
		GatewayStatus: sig.TransactionStatus,
		SettledAt:     s.now(),
	}

	switch target {
	case models.PaymentPaid:
		if sig.GrossAmount != 0 && sig.GrossAmount != order.TotalAmount {
			return nil, fmt.Errorf("order %s: got %d, want %d: %w",
				order.ExternalOrderId, sig.GrossAmount, order.TotalAmount, ErrAmountMismatch)
		}
		settlement.Ledger = ledger.PaymentEntry(order)
	case models.PaymentFailed:
		settlement.Restock, err = s.restockItems(ctx, order)
		if err != nil {
			return nil, err
		}
	}

	applied, err := s.store.SettleOrder(ctx, settlement)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Another signal won the race; report what it stored.
		current, err := s.store.GetOrder(ctx, order.Id)
		if err != nil {
			return nil, err
		}
		return &ReconcileResult{Order: current, Status: current.PaymentStatus, Outcome: OutcomeDuplicate}, nil
	}

	settledAt := settlement.SettledAt
	order.PaymentStatus = target
	order.GatewayStatus = sig.TransactionStatus
	order.UpdatedAt = settledAt
	order.SettledAt = &settledAt

	eventType := events.EventOrderPaid
	if target == models.PaymentFailed {
		eventType = events.EventOrderFailed
	}
	s.publishOrderEvent(ctx, eventType, order)

	return &ReconcileResult{Order: order, Status: target, Outcome: OutcomeApplied}, nil
}

// restockItems returns the line items whose products still exist.
func (s *Service) restockItems(ctx context.Context, order *models.Order) ([]models.LineItem, error) {
	restock := make([]models.LineItem, 0, len(order.Items))
	for _, li := range order.Items {
		if _, err := s.store.GetProduct(ctx, li.ProductId); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		restock = append(restock, li)
	}
	return restock, nil
}

// HandleNotification verifies a webhook body and reconciles it.
func (s *Service) HandleNotification(ctx context.Context, body []byte) (*ReconcileResult, error) {
	status, err := s.gateway.ParseNotification(ctx, body)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, signalFromStatus(status, SourceWebhook))
}

// RefreshStatus queries the gateway for the authoritative status of an order
// and reconciles it. An order the gateway does not know yet stays pending.
func (s *Service) RefreshStatus(ctx context.Context, externalOrderID, source string) (*ReconcileResult, error) {
	status, err := s.fetchStatus(ctx, externalOrderID)
	if errors.Is(err, gateway.ErrTransactionNotFound) {
		order, err := s.store.GetOrderByExternalID(ctx, externalOrderID)
		if err != nil {
			return nil, err
		}
		return &ReconcileResult{Order: order, Status: order.PaymentStatus, Outcome: OutcomePending}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, signalFromStatus(status, source))
}

// StatusReport pairs the stored order with the gateway's view of it.
// Gateway is nil when the gateway has no transaction for the order yet.
type StatusReport struct {
	Order   *models.Order
	Gateway *gateway.TransactionStatus
}

// PaymentStatus reconciles an order owned by userID with the gateway and
// reports both sides.
func (s *Service) PaymentStatus(ctx context.Context, userID, externalOrderID string) (*StatusReport, error) {
	order, err := s.store.GetOrderByExternalID(ctx, externalOrderID)
	if err != nil {
		return nil, err
	}
	if order.UserId != userID {
		return nil, fmt.Errorf("order %s: %w", externalOrderID, storage.ErrAccessDenied)
	}

	status, err := s.fetchStatus(ctx, externalOrderID)
	if errors.Is(err, gateway.ErrTransactionNotFound) {
		return &StatusReport{Order: order}, nil
	}
	if err != nil {
		return nil, err
	}

	result, err := s.Reconcile(ctx, signalFromStatus(status, SourcePoll))
	if err != nil {
		return nil, err
	}
	return &StatusReport{Order: result.Order, Gateway: status}, nil
}

// Inspect reports the stored order and the gateway status without reconciling.
func (s *Service) Inspect(ctx context.Context, externalOrderID string) (*StatusReport, error) {
	order, err := s.store.GetOrderByExternalID(ctx, externalOrderID)
	if err != nil {
		return nil, err
	}
	status, err := s.fetchStatus(ctx, externalOrderID)
	if errors.Is(err, gateway.ErrTransactionNotFound) {
		return &StatusReport{Order: order}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StatusReport{Order: order, Gateway: status}, nil
}

func (s *Service) fetchStatus(ctx context.Context, externalOrderID string) (*gateway.TransactionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	status, err := s.gateway.GetStatus(ctx, externalOrderID)
	if err != nil {
		if errors.Is(err, gateway.ErrTransactionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return status, nil
}

func signalFromStatus(status *gateway.TransactionStatus, source string) Signal {
	return Signal{
		ExternalOrderID:   status.OrderID,
		TransactionStatus: status.TransactionStatus,
		FraudStatus:       status.FraudStatus,
		GrossAmount:       status.GrossAmount,
		Source:            source,
	}
}

// SweepResult summarizes a pass over stale pending orders.
type SweepResult struct {
	Found   int
	Handled int
	Failed  int
}

// EnqueueStale schedules an immediate status check for every order still
// pending after maxAge.
func (s *Service) EnqueueStale(ctx context.Context, maxAge time.Duration) (*SweepResult, error) {
	return s.sweep(ctx, maxAge, func(ctx context.Context, order models.Order) error {
		return s.scheduler.ScheduleStatusCheck(ctx, order.ExternalOrderId, 0)
	})
}

// ReconcileStale refreshes every order still pending after maxAge inline.
func (s *Service) ReconcileStale(ctx context.Context, maxAge time.Duration) (*SweepResult, error) {
	return s.sweep(ctx, maxAge, func(ctx context.Context, order models.Order) error {
		_, err := s.RefreshStatus(ctx, order.ExternalOrderId, SourceSweep)
		return err
	})
}

func (s *Service) sweep(ctx context.Context, maxAge time.Duration, handle func(context.Context, models.Order) error) (*SweepResult, error) {
	logger := logging.FromContext(ctx)

	stale, err := s.store.GetStalePendingOrders(ctx, maxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}

	result := &SweepResult{Found: len(stale)}
	for _, order := range stale {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := handle(ctx, order); err != nil {
			result.Failed++
			logger.Error("failed to process stale order",
				zap.String("external_order_id", order.ExternalOrderId), zap.Error(err))
			continue
		}
		result.Handled++
	}

	logger.Info("stale order sweep finished",
		zap.Int("found", result.Found),
		zap.Int("handled", result.Handled),
		zap.Int("failed", result.Failed))
	return result, nil
}
