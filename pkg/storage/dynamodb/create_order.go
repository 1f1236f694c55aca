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

// CreateOrder atomically reserves stock for every line item and creates the order record.
// Each stock decrement is conditioned on the stock read inside the transaction, so
// concurrent orders can never drive a counter below zero.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now().UTC()
	if order.Id == "" {
		order.Id = uuid.New().String()
	}
	order.PaymentStatus = models.PaymentPending
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	for _, li := range order.Items {
		if li.Quantity <= 0 {
			return nil, fmt.Errorf("product %s: quantity must be positive", li.ProductId)
		}
	}

	orderAV, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}
	// created_at is a GSI sort key; store it fixed-width so it sorts lexically.
	orderAV["created_at"] = timeKeyValue(order.CreatedAt)
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, len(order.Items)+1)
	for _, li := range order.Items {
		items = append(items, types.TransactWriteItem{
			// Reserve stock for one line item.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Products),
				Key:                 stringKey("id", li.ProductId),
				UpdateExpression:    aws.String("SET stock = stock - :qty, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(id) AND store_id = :store_id AND stock >= :qty"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":qty":      numberValue(li.Quantity),
					":store_id": &types.AttributeValueMemberS{Value: order.StoreId},
					":now":      nowAV,
				},
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		// Create the order record.
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Orders),
			Item:                orderAV,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failed, ok := cancelledConditions(err); ok {
			for i, f := range failed {
				if !f {
					continue
				}
				if i < len(order.Items) {
					return nil, fmt.Errorf("product %s: %w", order.Items[i].ProductId, storage.ErrInsufficientStock)
				}
				return nil, fmt.Errorf("order %s: %w", order.Id, storage.ErrAlreadyExists)
			}
		}
		return nil, fmt.Errorf("failed to execute order transaction: %w", err)
	}

	return order, nil
}
