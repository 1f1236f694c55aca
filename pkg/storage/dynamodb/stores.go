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

const storesByUserIndex = "user_id-index"

// CreateStore creates a new storefront.
func (s *Store) CreateStore(ctx context.Context, store *models.Store) (*models.Store, error) {
	now := time.Now().UTC()
	store.Id = uuid.New().String()
	store.CreatedAt = now
	store.UpdatedAt = now

	storeAV, err := attributevalue.MarshalMap(store)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal store: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Stores),
		Item:                storeAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store in DynamoDB: %w", err)
	}

	return store, nil
}

// GetStore retrieves a storefront by ID.
func (s *Store) GetStore(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	if err := s.getItem(ctx, s.Tables.Stores, stringKey("id", storeID), &store); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("store %s: %w", storeID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &store, nil
}

// ListStoresByUserID retrieves all storefronts owned by a user, newest first.
func (s *Store) ListStoresByUserID(ctx context.Context, userID string) ([]models.Store, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Stores),
		IndexName:              aws.String(storesByUserIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
	}

	stores, err := queryAll[models.Store](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores by user ID: %w", err)
	}

	sort.Slice(stores, func(i, j int) bool {
		return stores[i].CreatedAt.After(stores[j].CreatedAt)
	})
	return stores, nil
}

// UpdateStore replaces the mutable fields of an existing storefront.
func (s *Store) UpdateStore(ctx context.Context, store *models.Store) (*models.Store, error) {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Stores),
		Key:                 stringKey("id", store.Id),
		UpdateExpression:    aws.String("SET store_name = :name, description = :description, address = :address, logo_url = :logo_url, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":        &types.AttributeValueMemberS{Value: store.StoreName},
			":description": &types.AttributeValueMemberS{Value: store.Description},
			":address":     &types.AttributeValueMemberS{Value: store.Address},
			":logo_url":    &types.AttributeValueMemberS{Value: store.LogoURL},
			":now":         nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, fmt.Errorf("store %s: %w", store.Id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	var updated models.Store
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store: %w", err)
	}
	return &updated, nil
}

// DeleteStore deletes a storefront.
func (s *Store) DeleteStore(ctx context.Context, storeID string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Tables.Stores),
		Key:                 stringKey("id", storeID),
		ConditionExpression: aws.String("attribute_exists(id)"), // Ensure the store exists before deleting.
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("store %s: %w", storeID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete store from DynamoDB: %w", err)
	}
	return nil
}
