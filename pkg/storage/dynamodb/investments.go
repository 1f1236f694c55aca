package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/google/uuid"
)

func investmentKey(userID, investmentID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
		"id":      &types.AttributeValueMemberS{Value: investmentID},
	}
}

// CreateInvestment debits the wallet and records the new position in one transaction.
func (s *Store) CreateInvestment(ctx context.Context, inv *models.Investment, entry *models.LedgerEntry) (*models.Wallet, error) {
	now := time.Now().UTC()
	if inv.Id == "" {
		inv.Id = uuid.New().String()
	}
	inv.Status = models.InvestmentActive
	inv.CreatedAt = now

	items, err := s.ledgerEntryItems(entry, now)
	if err != nil {
		return nil, err
	}

	invAV, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal investment: %w", err)
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Investments),
			Item:                invAV,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	if err := s.transactLedger(ctx, items); err != nil {
		return nil, err
	}
	return s.GetWallet(ctx, entry.UserId)
}

// GetInvestment retrieves one of a user's investments.
func (s *Store) GetInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	var inv models.Investment
	if err := s.getItem(ctx, s.Tables.Investments, investmentKey(userID, investmentID), &inv); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("investment %s: %w", investmentID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

// ListInvestments retrieves a user's investments, newest first.
func (s *Store) ListInvestments(ctx context.Context, userID string, status models.InvestmentStatus) ([]models.Investment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Investments),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if status != "" {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(status)}
	}

	investments, err := queryAll[models.Investment](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	sort.Slice(investments, func(i, j int) bool {
		return investments[i].CreatedAt.After(investments[j].CreatedAt)
	})
	return investments, nil
}

// SellInvestment closes an active position and credits the proceeds in one transaction.
func (s *Store) SellInvestment(ctx context.Context, inv *models.Investment, entry *models.LedgerEntry) (*models.Wallet, error) {
	now := time.Now().UTC()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Investments),
				Key:                 investmentKey(inv.UserId, inv.Id),
				UpdateExpression:    aws.String("SET #status = :sold, sell_amount = :sell_amount, sold_at = :now"),
				ConditionExpression: aws.String("#status = :active"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":sold":        &types.AttributeValueMemberS{Value: string(models.InvestmentSold)},
					":active":      &types.AttributeValueMemberS{Value: string(models.InvestmentActive)},
					":sell_amount": numberValue(inv.SellAmount),
					":now":         nowAV,
				},
			},
		},
	}

	ledgerItems, err := s.ledgerEntryItems(entry, now)
	if err != nil {
		return nil, err
	}
	items = append(items, ledgerItems...)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failed, ok := cancelledConditions(err); ok && len(failed) > 0 && failed[0] {
			return nil, fmt.Errorf("investment %s: %w", inv.Id, storage.ErrInvestmentNotActive)
		}
		return nil, fmt.Errorf("failed to execute sale transaction: %w", err)
	}

	inv.Status = models.InvestmentSold
	inv.SoldAt = &now
	return s.GetWallet(ctx, entry.UserId)
}
