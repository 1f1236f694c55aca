package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
)

const (
	ordersByStoreIndex      = "store_id-created_at-index"
	ordersByExternalIDIndex = "external_order_id-index"
	pendingOrdersIndex      = "payment_status-created_at-index"
)

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := s.getItem(ctx, s.Tables.Orders, stringKey("id", orderID), &order); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// GetOrderByExternalID retrieves an order by the identifier shared with the payment gateway.
func (s *Store) GetOrderByExternalID(ctx context.Context, externalOrderID string) (*models.Order, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Orders),
		IndexName:              aws.String(ordersByExternalIDIndex),
		KeyConditionExpression: aws.String("external_order_id = :external_order_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":external_order_id": &types.AttributeValueMemberS{Value: externalOrderID},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query order by external ID: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("order %s: %w", externalOrderID, storage.ErrNotFound)
	}

	var order models.Order
	if err := attributevalue.UnmarshalMap(result.Items[0], &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

// ListOrdersByStoreID retrieves all orders of a store, newest first.
func (s *Store) ListOrdersByStoreID(ctx context.Context, storeID string) ([]models.Order, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Orders),
		IndexName:              aws.String(ordersByStoreIndex),
		KeyConditionExpression: aws.String("store_id = :store_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":store_id": &types.AttributeValueMemberS{Value: storeID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at in descending order
	}

	orders, err := queryAll[models.Order](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by store ID: %w", err)
	}
	return orders, nil
}

// GetStalePendingOrders retrieves orders that have been pending for longer than maxAge.
func (s *Store) GetStalePendingOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error) {
	cutoffAV := timeKeyValue(time.Now().Add(-maxAge))

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Orders),
		IndexName:              aws.String(pendingOrdersIndex),
		KeyConditionExpression: aws.String("payment_status = :status AND created_at < :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PaymentPending)},
			":cutoff": cutoffAV,
		},
	}

	orders, err := queryAll[models.Order](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale pending orders: %w", err)
	}
	return orders, nil
}
