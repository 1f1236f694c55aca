package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/google/uuid"
)

// CreateTransactionHistory appends a checkout receipt.
func (s *Store) CreateTransactionHistory(ctx context.Context, h *models.TransactionHistory) (*models.TransactionHistory, error) {
	now := time.Now().UTC()
	h.Id = uuid.New().String()
	h.CreatedAt = now
	h.HistoryKey = newSortKey(now)

	historyAV, err := attributevalue.MarshalMap(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction history: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.TransactionHistories),
		Item:                historyAV,
		ConditionExpression: aws.String("attribute_not_exists(history_key)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction history: %w", err)
	}
	return h, nil
}

// ListTransactionHistory retrieves a user's receipts, newest first.
func (s *Store) ListTransactionHistory(ctx context.Context, q storage.HistoryQuery) (*storage.Page[models.TransactionHistory], error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.TransactionHistories),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: q.UserID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if q.Status != "" {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: q.Status}
	}

	return queryPage[models.TransactionHistory](ctx, s.Client, input, q.ListOptions)
}
