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

// CreateChatbotHistory appends one assistant command to the user's log.
func (s *Store) CreateChatbotHistory(ctx context.Context, h *models.ChatbotHistory) (*models.ChatbotHistory, error) {
	now := time.Now().UTC()
	h.Id = uuid.New().String()
	h.CreatedAt = now
	h.HistoryKey = newSortKey(now)

	historyAV, err := attributevalue.MarshalMap(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chatbot history: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.ChatbotHistories),
		Item:                historyAV,
		ConditionExpression: aws.String("attribute_not_exists(history_key)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chatbot history: %w", err)
	}
	return h, nil
}

// ListChatbotHistory retrieves a user's commands, newest first.
func (s *Store) ListChatbotHistory(ctx context.Context, q storage.ChatbotQuery) (*storage.Page[models.ChatbotHistory], error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.ChatbotHistories),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: q.UserID},
		},
		ScanIndexForward: aws.Bool(false),
	}

	return queryPage[models.ChatbotHistory](ctx, s.Client, input, q.ListOptions)
}
