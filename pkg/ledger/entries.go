package ledger

import (
	"fmt"

	"github.com/chris/store-payments/pkg/models"
)

// TopUpEntry credits amount to the wallet.
func TopUpEntry(userID string, amount int64, description string) *models.LedgerEntry {
	if description == "" {
		description = "Wallet top-up"
	}
	return &models.LedgerEntry{
		UserId: userID,
		Delta:  amount,
		Records: []models.FinancialRecord{
			{Type: models.RecordIncome, Amount: amount, BalanceDelta: amount, Description: description},
		},
		Activity: models.ActivityLog{ActivityType: models.ActivityTopup, Amount: amount, Description: description},
	}
}

// WithdrawalEntry debits amount from the wallet.
func WithdrawalEntry(userID string, amount int64, description string) *models.LedgerEntry {
	if description == "" {
		description = "Wallet withdrawal"
	}
	return &models.LedgerEntry{
		UserId: userID,
		Delta:  -amount,
		Records: []models.FinancialRecord{
			{Type: models.RecordExpense, Amount: amount, BalanceDelta: -amount, Description: description},
		},
		Activity: models.ActivityLog{ActivityType: models.ActivityWithdraw, Amount: amount, Description: description},
	}
}

// PaymentEntry credits a paid order's total to the store owner's wallet.
func PaymentEntry(order *models.Order) *models.LedgerEntry {
	description := fmt.Sprintf("Payment received for order %s", order.ExternalOrderId)
	return &models.LedgerEntry{
		UserId: order.UserId,
		Delta:  order.TotalAmount,
		Records: []models.FinancialRecord{
			{
				Type:         models.RecordIncome,
				Amount:       order.TotalAmount,
				BalanceDelta: order.TotalAmount,
				Description:  description,
				ReferenceId:  order.Id,
			},
		},
		Activity: models.ActivityLog{
			ActivityType: models.ActivityPayment,
			Amount:       order.TotalAmount,
			Description:  description,
			ReferenceId:  order.Id,
		},
	}
}

// InvestmentPurchaseEntry debits the purchase amount of inv.
func InvestmentPurchaseEntry(inv *models.Investment) *models.LedgerEntry {
	description := fmt.Sprintf("Investment in %s", inv.WalletAddress)
	return &models.LedgerEntry{
		UserId: inv.UserId,
		Delta:  -inv.Amount,
		Records: []models.FinancialRecord{
			{
				Type:         models.RecordInvestment,
				Amount:       inv.Amount,
				BalanceDelta: -inv.Amount,
				Description:  description,
				ReferenceId:  inv.Id,
			},
		},
		Activity: models.ActivityLog{
			ActivityType: models.ActivityInvestBuy,
			Amount:       inv.Amount,
			Description:  description,
			ReferenceId:  inv.Id,
		},
	}
}

// InvestmentSaleEntry credits the proceeds of inv.SellAmount and records the
// gain (or loss, when negative) against the original amount. The gain record
// carries no balance delta of its own.
func InvestmentSaleEntry(inv *models.Investment) *models.LedgerEntry {
	gain := inv.SellAmount - inv.Amount
	description := fmt.Sprintf("Sold investment in %s", inv.WalletAddress)
	return &models.LedgerEntry{
		UserId: inv.UserId,
		Delta:  inv.SellAmount,
		Records: []models.FinancialRecord{
			{
				Type:         models.RecordIncome,
				Amount:       inv.SellAmount,
				BalanceDelta: inv.SellAmount,
				Description:  description,
				ReferenceId:  inv.Id,
			},
			{
				Type:        models.RecordGain,
				Amount:      gain,
				Description: fmt.Sprintf("Gain on investment in %s", inv.WalletAddress),
				ReferenceId: inv.Id,
			},
		},
		Activity: models.ActivityLog{
			ActivityType: models.ActivityInvestSell,
			Amount:       inv.SellAmount,
			Description:  description,
			ReferenceId:  inv.Id,
		},
	}
}
