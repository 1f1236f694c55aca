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

const productsByStoreIndex = "store_id-index"

// CreateProduct adds a product to a store's catalog.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	product.Id = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	productAV, err := attributevalue.MarshalMap(product)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Products),
		Item:                productAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product in DynamoDB: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := s.getItem(ctx, s.Tables.Products, stringKey("id", productID), &product); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ListProductsByStoreID retrieves a store's catalog, newest first.
func (s *Store) ListProductsByStoreID(ctx context.Context, storeID string) ([]models.Product, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Products),
		IndexName:              aws.String(productsByStoreIndex),
		KeyConditionExpression: aws.String("store_id = :store_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":store_id": &types.AttributeValueMemberS{Value: storeID},
		},
	}

	products, err := queryAll[models.Product](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by store ID: %w", err)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// UpdateProduct changes the descriptive fields and price of a product. Stock is left untouched.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Products),
		Key:                 stringKey("id", product.Id),
		UpdateExpression:    aws.String("SET #name = :name, description = :description, price = :price, category = :category, image_url = :image_url, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#name": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":        &types.AttributeValueMemberS{Value: product.Name},
			":description": &types.AttributeValueMemberS{Value: product.Description},
			":price":       numberValue(product.Price),
			":category":    &types.AttributeValueMemberS{Value: product.Category},
			":image_url":   &types.AttributeValueMemberS{Value: product.ImageURL},
			":now":         nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, fmt.Errorf("product %s: %w", product.Id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	var updated models.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &updated, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Tables.Products),
		Key:                 stringKey("id", productID),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("product %s: %w", productID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete product from DynamoDB: %w", err)
	}
	return nil
}
