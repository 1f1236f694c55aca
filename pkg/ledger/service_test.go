package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chris/store-payments/pkg/events"
	eventmocks "github.com/chris/store-payments/pkg/events/mocks"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/chris/store-payments/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetWallet(t *testing.T) {
	t.Run("Existing", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetWallet", mock.Anything, "user-1").Return(&models.Wallet{UserId: "user-1", Balance: 500}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		wallet, err := s.GetWallet(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, int64(500), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Created On First Access", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetWallet", mock.Anything, "user-1").Return(nil, storage.ErrNotFound).Once()
		mockStorage.On("CreateWallet", mock.Anything, &models.Wallet{UserId: "user-1"}).
			Return(&models.Wallet{UserId: "user-1"}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		wallet, err := s.GetWallet(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, int64(0), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Created Concurrently", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetWallet", mock.Anything, "user-1").Return(nil, storage.ErrNotFound).Once()
		mockStorage.On("CreateWallet", mock.Anything, mock.Anything).Return(nil, storage.ErrAlreadyExists).Once()
		mockStorage.On("GetWallet", mock.Anything, "user-1").Return(&models.Wallet{UserId: "user-1", Balance: 10}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		wallet, err := s.GetWallet(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, int64(10), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})
}

func TestTopUp(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockPublisher := new(eventmocks.Publisher)
		mockStorage.On("ApplyLedgerEntry", mock.Anything, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.UserId == "user-1" && e.Delta == 1000 &&
				len(e.Records) == 1 && e.Records[0].Type == models.RecordIncome &&
				e.Activity.ActivityType == models.ActivityTopup
		})).Return(&models.Wallet{UserId: "user-1", Balance: 1500}, nil).Once()
		mockPublisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
			p, ok := e.Payload.(events.WalletChangedPayload)
			return ok && e.Type == events.EventWalletChanged && e.Key == "user-1" && p.NewBalance == 1500 && p.Change == 1000
		})).Return(nil).Once()

		s := NewService(mockStorage, mockPublisher, nil)
		wallet, err := s.TopUp(context.Background(), "user-1", 1000, "")

		require.NoError(t, err)
		assert.Equal(t, int64(1500), wallet.Balance)
		mockStorage.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		mockStorage := new(mocks.Storage)

		s := NewService(mockStorage, nil, nil)
		_, err := s.TopUp(context.Background(), "user-1", 0, "")

		assert.ErrorIs(t, err, ErrInvalidAmount)
		mockStorage.AssertNotCalled(t, "ApplyLedgerEntry", mock.Anything, mock.Anything)
	})

	t.Run("Publish Failure Is Ignored", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockPublisher := new(eventmocks.Publisher)
		mockStorage.On("ApplyLedgerEntry", mock.Anything, mock.Anything).Return(&models.Wallet{UserId: "user-1", Balance: 100}, nil).Once()
		mockPublisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		s := NewService(mockStorage, mockPublisher, nil)
		wallet, err := s.TopUp(context.Background(), "user-1", 100, "gift")

		require.NoError(t, err)
		assert.Equal(t, int64(100), wallet.Balance)
		mockPublisher.AssertExpectations(t)
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ApplyLedgerEntry", mock.Anything, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Delta == -300 && e.Records[0].Type == models.RecordExpense &&
				e.Records[0].Amount == 300 && e.Activity.ActivityType == models.ActivityWithdraw
		})).Return(&models.Wallet{UserId: "user-1", Balance: 200}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		wallet, err := s.Withdraw(context.Background(), "user-1", 300, "")

		require.NoError(t, err)
		assert.Equal(t, int64(200), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ApplyLedgerEntry", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("wallet user-1: %w", storage.ErrInsufficientFunds)).Once()

		s := NewService(mockStorage, nil, nil)
		_, err := s.Withdraw(context.Background(), "user-1", 300, "")

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Negative Amount", func(t *testing.T) {
		s := NewService(new(mocks.Storage), nil, nil)
		_, err := s.Withdraw(context.Background(), "user-1", -5, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestBuyInvestment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateInvestment", mock.Anything,
			mock.MatchedBy(func(inv *models.Investment) bool {
				return inv.Id != "" && inv.UserId == "user-1" && inv.WalletAddress == "0xabc" && inv.Amount == 400
			}),
			mock.MatchedBy(func(e *models.LedgerEntry) bool {
				return e.Delta == -400 && e.Records[0].Type == models.RecordInvestment &&
					e.Records[0].ReferenceId != "" && e.Activity.ActivityType == models.ActivityInvestBuy
			}),
		).Return(&models.Wallet{UserId: "user-1", Balance: 600}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		inv, wallet, err := s.BuyInvestment(context.Background(), "user-1", InvestmentRequest{WalletAddress: " 0xabc ", Amount: 400})

		require.NoError(t, err)
		assert.Equal(t, "0xabc", inv.WalletAddress)
		assert.Equal(t, int64(600), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Missing Wallet Address", func(t *testing.T) {
		s := NewService(new(mocks.Storage), nil, nil)
		_, _, err := s.BuyInvestment(context.Background(), "user-1", InvestmentRequest{Amount: 400})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateInvestment", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storage.ErrInsufficientFunds).Once()

		s := NewService(mockStorage, nil, nil)
		_, _, err := s.BuyInvestment(context.Background(), "user-1", InvestmentRequest{WalletAddress: "0xabc", Amount: 400})

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
	})
}

func TestSellInvestment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetInvestment", mock.Anything, "user-1", "inv-1").Return(&models.Investment{
			Id: "inv-1", UserId: "user-1", WalletAddress: "0xabc", Amount: 400, Status: models.InvestmentActive,
		}, nil).Once()
		mockStorage.On("SellInvestment", mock.Anything,
			mock.MatchedBy(func(inv *models.Investment) bool { return inv.SellAmount == 550 }),
			mock.MatchedBy(func(e *models.LedgerEntry) bool {
				return e.Delta == 550 && len(e.Records) == 2 &&
					e.Records[1].Type == models.RecordGain && e.Records[1].Amount == 150 && e.Records[1].BalanceDelta == 0
			}),
		).Return(&models.Wallet{UserId: "user-1", Balance: 1150}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		inv, wallet, err := s.SellInvestment(context.Background(), "user-1", "inv-1", 550)

		require.NoError(t, err)
		assert.Equal(t, int64(550), inv.SellAmount)
		assert.Equal(t, int64(1150), wallet.Balance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Already Sold", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetInvestment", mock.Anything, "user-1", "inv-1").Return(&models.Investment{
			Id: "inv-1", UserId: "user-1", Amount: 400, Status: models.InvestmentSold,
		}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		_, _, err := s.SellInvestment(context.Background(), "user-1", "inv-1", 550)

		assert.ErrorIs(t, err, storage.ErrInvestmentNotActive)
		mockStorage.AssertNotCalled(t, "SellInvestment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetInvestment", mock.Anything, "user-1", "inv-1").Return(nil, storage.ErrNotFound).Once()

		s := NewService(mockStorage, nil, nil)
		_, _, err := s.SellInvestment(context.Background(), "user-1", "inv-1", 550)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSummary(t *testing.T) {
	mockStorage := new(mocks.Storage)
	mockStorage.On("SumFinancialRecords", mock.Anything, "user-1").Return(map[models.RecordType]int64{
		models.RecordIncome:     5000,
		models.RecordExpense:    1200,
		models.RecordInvestment: 800,
		models.RecordGain:       -100,
	}, nil).Once()
	mockStorage.On("GetWallet", mock.Anything, "user-1").Return(&models.Wallet{UserId: "user-1", Balance: 3000}, nil).Once()

	s := NewService(mockStorage, nil, nil)
	sum, err := s.Summary(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3700), sum.NetIncome)
	assert.Equal(t, int64(800), sum.TotalInvestment)
	assert.Equal(t, int64(3000), sum.WalletBalance)
	mockStorage.AssertExpectations(t)
}

func TestListRecords(t *testing.T) {
	t.Run("Unknown Type", func(t *testing.T) {
		s := NewService(new(mocks.Storage), nil, nil)
		_, err := s.ListRecords(context.Background(), storage.RecordQuery{UserID: "user-1", Type: "bonus"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		q := storage.RecordQuery{UserID: "user-1", Type: models.RecordIncome}
		mockStorage.On("ListFinancialRecords", mock.Anything, q).Return(&storage.Page[models.FinancialRecord]{
			Items: []models.FinancialRecord{{Id: "rec-1"}},
		}, nil).Once()

		s := NewService(mockStorage, nil, nil)
		page, err := s.ListRecords(context.Background(), q)

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Empty(t, page.NextCursor)
	})
}

func TestPaymentEntry(t *testing.T) {
	entry := PaymentEntry(&models.Order{Id: "order-1", UserId: "owner-1", ExternalOrderId: "ORD-1", TotalAmount: 25000})

	assert.Equal(t, "owner-1", entry.UserId)
	assert.Equal(t, int64(25000), entry.Delta)
	require.Len(t, entry.Records, 1)
	assert.Equal(t, models.RecordIncome, entry.Records[0].Type)
	assert.Equal(t, "order-1", entry.Records[0].ReferenceId)
	assert.Equal(t, models.ActivityPayment, entry.Activity.ActivityType)
}
