// Package ledger applies money-moving events to wallets together with the
// financial records and activity entries that explain them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chris/store-payments/pkg/events"
	"github.com/chris/store-payments/pkg/logging"
	"github.com/chris/store-payments/pkg/metrics"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/chris/store-payments/pkg/ledger")

// ErrInvalidAmount is returned for non-positive amounts.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrInvalidInput is returned for missing required fields.
var ErrInvalidInput = errors.New("invalid input")

// Store is the storage the ledger needs.
type Store interface {
	storage.WalletStore
	storage.InvestmentStore
	storage.LedgerReader
}

// Service applies wallet mutations.
type Service struct {
	store   Store
	events  events.Publisher
	metrics *metrics.Metrics
}

// NewService creates a new Service. publisher and m may be nil.
func NewService(store Store, publisher events.Publisher, m *metrics.Metrics) *Service {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	return &Service{store: store, events: publisher, metrics: m}
}

// GetWallet returns the user's wallet, creating an empty one on first access.
func (s *Service) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := s.store.GetWallet(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	wallet, err = s.store.CreateWallet(ctx, &models.Wallet{UserId: userID})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Created concurrently.
		return s.store.GetWallet(ctx, userID)
	}
	return wallet, err
}

// TopUp credits the wallet.
func (s *Service) TopUp(ctx context.Context, userID string, amount int64, description string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.apply(ctx, "topup", TopUpEntry(userID, amount, description))
}

// Withdraw debits the wallet. The balance is checked inside the same
// transaction as the debit, so concurrent withdrawals cannot overdraw it.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64, description string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.apply(ctx, "withdraw", WithdrawalEntry(userID, amount, description))
}

func (s *Service) apply(ctx context.Context, operation string, entry *models.LedgerEntry) (*models.Wallet, error) {
	ctx, span := tracer.Start(ctx, "ledger."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("user.id", entry.UserId), attribute.Int64("ledger.delta", entry.Delta))

	wallet, err := s.store.ApplyLedgerEntry(ctx, entry)
	if err != nil {
		s.fail(ctx, span, operation, err)
		return nil, err
	}

	s.metrics.WalletOperation(operation, "success")
	s.publishWalletChanged(ctx, entry, wallet)
	return wallet, nil
}

// InvestmentRequest is the input to BuyInvestment.
type InvestmentRequest struct {
	WalletAddress string
	Asset         string
	Amount        int64
}

// BuyInvestment funds a new investment from the wallet.
func (s *Service) BuyInvestment(ctx context.Context, userID string, req InvestmentRequest) (*models.Investment, *models.Wallet, error) {
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.WalletAddress == "" {
		return nil, nil, fmt.Errorf("%w: wallet_address is required", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	ctx, span := tracer.Start(ctx, "ledger.invest_buy")
	defer span.End()

	inv := &models.Investment{
		Id:            uuid.New().String(),
		UserId:        userID,
		WalletAddress: req.WalletAddress,
		Asset:         req.Asset,
		Amount:        req.Amount,
	}
	entry := InvestmentPurchaseEntry(inv)

	wallet, err := s.store.CreateInvestment(ctx, inv, entry)
	if err != nil {
		s.fail(ctx, span, "invest_buy", err)
		return nil, nil, err
	}

	s.metrics.WalletOperation("invest_buy", "success")
	s.publishWalletChanged(ctx, entry, wallet)
	return inv, wallet, nil
}

// SellInvestment closes an active investment at sellAmount.
func (s *Service) SellInvestment(ctx context.Context, userID, investmentID string, sellAmount int64) (*models.Investment, *models.Wallet, error) {
	if sellAmount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	ctx, span := tracer.Start(ctx, "ledger.invest_sell")
	defer span.End()

	inv, err := s.store.GetInvestment(ctx, userID, investmentID)
	if err != nil {
		return nil, nil, err
	}
	if inv.Status != models.InvestmentActive {
		return nil, nil, fmt.Errorf("investment %s: %w", investmentID, storage.ErrInvestmentNotActive)
	}

	inv.SellAmount = sellAmount
	entry := InvestmentSaleEntry(inv)

	wallet, err := s.store.SellInvestment(ctx, inv, entry)
	if err != nil {
		s.fail(ctx, span, "invest_sell", err)
		return nil, nil, err
	}

	s.metrics.WalletOperation("invest_sell", "success")
	s.publishWalletChanged(ctx, entry, wallet)
	return inv, wallet, nil
}

// ListInvestments returns the user's investments, optionally filtered by status.
func (s *Service) ListInvestments(ctx context.Context, userID string, status models.InvestmentStatus) ([]models.Investment, error) {
	return s.store.ListInvestments(ctx, userID, status)
}

// Summary aggregates the user's financial records.
type Summary struct {
	TotalIncome     int64
	TotalExpense    int64
	TotalInvestment int64
	TotalGain       int64
	WalletBalance   int64
	NetIncome       int64
}

// Summary totals the user's records per type. NetIncome = income - expense + gain.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	totals, err := s.store.SumFinancialRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TotalIncome:     totals[models.RecordIncome],
		TotalExpense:    totals[models.RecordExpense],
		TotalInvestment: totals[models.RecordInvestment],
		TotalGain:       totals[models.RecordGain],
		WalletBalance:   wallet.Balance,
	}
	sum.NetIncome = sum.TotalIncome - sum.TotalExpense + sum.TotalGain
	return sum, nil
}

// ListRecords returns one page of the user's financial records.
func (s *Service) ListRecords(ctx context.Context, q storage.RecordQuery) (*storage.Page[models.FinancialRecord], error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, q.Type)
	}
	return s.store.ListFinancialRecords(ctx, q)
}

// ListActivities returns one page of the user's activity log.
func (s *Service) ListActivities(ctx context.Context, q storage.ActivityQuery) (*storage.Page[models.ActivityLog], error) {
	if q.ActivityType != "" && !q.ActivityType.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, q.ActivityType)
	}
	return s.store.ListActivities(ctx, q)
}

func (s *Service) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	outcome := "error"
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		outcome = "insufficient_funds"
	case errors.Is(err, storage.ErrInvestmentNotActive):
		outcome = "not_active"
	}
	s.metrics.WalletOperation(operation, outcome)
	logging.FromContext(ctx).Warn("wallet operation failed",
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Error(err))
}

func (s *Service) publishWalletChanged(ctx context.Context, entry *models.LedgerEntry, wallet *models.Wallet) {
	event := events.Event{
		Type:       events.EventWalletChanged,
		Key:        entry.UserId,
		OccurredAt: time.Now().UTC(),
		Payload: events.WalletChangedPayload{
			UserID:       entry.UserId,
			ActivityType: string(entry.Activity.ActivityType),
			ReferenceID:  entry.Activity.ReferenceId,
			Change:       entry.Delta,
			NewBalance:   wallet.Balance,
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("failed to publish wallet event",
			zap.String("user_id", entry.UserId), zap.Error(err))
	}
}
