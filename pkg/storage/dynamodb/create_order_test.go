package dynamodb

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrder() *models.Order {
	return &models.Order{
		StoreId:         "store-1",
		UserId:          "user-1",
		ExternalOrderId: "ORD-1",
		Items: []models.LineItem{
			{ProductId: "p1", ProductName: "Tea", Quantity: 2, UnitPrice: 5000},
			{ProductId: "p2", ProductName: "Cake", Quantity: 1, UnitPrice: 15000},
		},
		TotalAmount: 25000,
	}
}

func TestCreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, client := newTestStore()
		client.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 3 {
				return false
			}
			reserve := in.TransactItems[0].Update
			qty, ok := reserve.ExpressionAttributeValues[":qty"].(*types.AttributeValueMemberN)
			return aws.ToString(reserve.TableName) == "products" &&
				aws.ToString(reserve.ConditionExpression) == "attribute_exists(id) AND store_id = :store_id AND stock >= :qty" &&
				ok && qty.Value == "2" &&
				aws.ToString(in.TransactItems[2].Put.TableName) == "orders"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		order, err := store.CreateOrder(context.Background(), newOrder())

		require.NoError(t, err)
		assert.NotEmpty(t, order.Id)
		assert.Equal(t, models.PaymentPending, order.PaymentStatus)
		assert.False(t, order.CreatedAt.IsZero())
		client.AssertExpectations(t)
	})

	t.Run("Keeps Caller Timestamps", func(t *testing.T) {
		store, client := newTestStore()
		stamped := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		client.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			createdAt, ok := in.TransactItems[2].Put.Item["created_at"].(*types.AttributeValueMemberS)
			return ok && createdAt.Value == "2024-05-01T10:00:00.000000000Z"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		in := newOrder()
		in.CreatedAt = stamped
		in.UpdatedAt = stamped
		order, err := store.CreateOrder(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, stamped, order.CreatedAt)
		assert.Equal(t, stamped, order.UpdatedAt)
		client.AssertExpectations(t)
	})

	t.Run("Created At Sorts Lexically", func(t *testing.T) {
		store, client := newTestStore()
		var keys []string
		client.On("TransactWriteItems", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			in := args.Get(1).(*dynamodb.TransactWriteItemsInput)
			if createdAt, ok := in.TransactItems[2].Put.Item["created_at"].(*types.AttributeValueMemberS); ok {
				keys = append(keys, createdAt.Value)
			}
		}).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		// Whole seconds would drop the fractional part under RFC3339Nano.
		for _, at := range []time.Time{
			time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC),
		} {
			in := newOrder()
			in.CreatedAt = at
			_, err := store.CreateOrder(context.Background(), in)
			require.NoError(t, err)
		}

		require.Len(t, keys, 2)
		assert.Len(t, keys[0], len(keys[1]))
		assert.Less(t, keys[0], keys[1])
	})

	t.Run("Non Positive Quantity", func(t *testing.T) {
		store, client := newTestStore()
		in := newOrder()
		in.Items[0].Quantity = math.MinInt64

		_, err := store.CreateOrder(context.Background(), in)

		assert.Error(t, err)
		client.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Insufficient Stock", func(t *testing.T) {
		store, client := newTestStore()
		client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled(3, 1))

		_, err := store.CreateOrder(context.Background(), newOrder())

		assert.ErrorIs(t, err, storage.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "p2")
	})

	t.Run("Duplicate Order", func(t *testing.T) {
		store, client := newTestStore()
		client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled(3, 2))

		_, err := store.CreateOrder(context.Background(), newOrder())

		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("Storage Error", func(t *testing.T) {
		store, client := newTestStore()
		client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := store.CreateOrder(context.Background(), newOrder())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrInsufficientStock)
	})
}
