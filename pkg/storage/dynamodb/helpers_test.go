package dynamodb

import (
	"context"
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

func TestNewSortKey(t *testing.T) {
	earlier := newSortKey(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	later := newSortKey(time.Date(2024, 1, 2, 3, 4, 5, 1000, time.UTC))

	assert.Less(t, earlier, later)
	assert.NotEqual(t, newSortKey(time.Unix(0, 0)), newSortKey(time.Unix(0, 0)))
}

func TestTimeKeyValue(t *testing.T) {
	whole := timeKeyValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)).(*types.AttributeValueMemberS)
	fraction := timeKeyValue(time.Date(2024, 1, 2, 3, 4, 5, 100_000_000, time.UTC)).(*types.AttributeValueMemberS)
	zoned := timeKeyValue(time.Date(2024, 1, 2, 10, 4, 5, 0, time.FixedZone("WIB", 7*3600))).(*types.AttributeValueMemberS)

	assert.Equal(t, "2024-01-02T03:04:05.000000000Z", whole.Value)
	assert.Equal(t, whole.Value, zoned.Value)
	assert.Len(t, fraction.Value, len(whole.Value))
	assert.Less(t, whole.Value, fraction.Value)
}

func TestCursor(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		key := map[string]types.AttributeValue{
			"user_id":    &types.AttributeValueMemberS{Value: "user-1"},
			"record_key": &types.AttributeValueMemberS{Value: "2024-01-02T03:04:05.000000000Z#abc"},
		}

		cursor, err := encodeCursor(key)
		require.NoError(t, err)
		decoded, err := decodeCursor(cursor)

		require.NoError(t, err)
		assert.Equal(t, key, decoded)
	})

	t.Run("Empty", func(t *testing.T) {
		cursor, err := encodeCursor(nil)
		require.NoError(t, err)
		assert.Empty(t, cursor)

		key, err := decodeCursor("")
		require.NoError(t, err)
		assert.Nil(t, key)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, cursor := range []string{"not base64!", "bm90IGpzb24", "e30"} {
			_, err := decodeCursor(cursor)
			assert.ErrorIs(t, err, storage.ErrInvalidCursor, cursor)
		}
	})
}

func TestListFinancialRecords(t *testing.T) {
	record := func(id string) map[string]types.AttributeValue {
		return mustMarshal(t, models.FinancialRecord{UserId: "user-1", RecordKey: id, Id: id, Type: models.RecordIncome, Amount: 100})
	}
	lastKey := func(id string) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{
			"user_id":    &types.AttributeValueMemberS{Value: "user-1"},
			"record_key": &types.AttributeValueMemberS{Value: id},
		}
	}

	t.Run("Fills Page Across Filtered Rounds", func(t *testing.T) {
		store, client := newTestStore()
		client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToInt32(in.Limit) == 3 && in.ExclusiveStartKey == nil &&
				aws.ToString(in.FilterExpression) == "#type = :type" && !aws.ToBool(in.ScanIndexForward)
		})).Return(&dynamodb.QueryOutput{
			Items:            []map[string]types.AttributeValue{record("r1")},
			LastEvaluatedKey: lastKey("r2"),
		}, nil).Once()
		client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToInt32(in.Limit) == 2 && in.ExclusiveStartKey != nil
		})).Return(&dynamodb.QueryOutput{
			Items:            []map[string]types.AttributeValue{record("r3"), record("r4")},
			LastEvaluatedKey: lastKey("r4"),
		}, nil).Once()

		page, err := store.ListFinancialRecords(context.Background(), storage.RecordQuery{
			UserID:      "user-1",
			Type:        models.RecordIncome,
			ListOptions: storage.ListOptions{Limit: 3},
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "r4", page.Items[2].Id)
		assert.NotEmpty(t, page.NextCursor)
		client.AssertExpectations(t)
	})

	t.Run("Last Page Has No Cursor", func(t *testing.T) {
		store, client := newTestStore()
		client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{record("r1")},
		}, nil).Once()

		page, err := store.ListFinancialRecords(context.Background(), storage.RecordQuery{UserID: "user-1"})

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("Invalid Cursor", func(t *testing.T) {
		store, client := newTestStore()

		_, err := store.ListFinancialRecords(context.Background(), storage.RecordQuery{
			UserID:      "user-1",
			ListOptions: storage.ListOptions{Cursor: "%%%"},
		})

		assert.ErrorIs(t, err, storage.ErrInvalidCursor)
		client.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})
}

func TestSumFinancialRecords(t *testing.T) {
	store, client := newTestStore()
	client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			mustMarshal(t, models.FinancialRecord{Type: models.RecordIncome, Amount: 1000}),
			mustMarshal(t, models.FinancialRecord{Type: models.RecordExpense, Amount: 300}),
		},
		LastEvaluatedKey: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: "user-1"},
		},
	}, nil).Once()
	client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			mustMarshal(t, models.FinancialRecord{Type: models.RecordIncome, Amount: 500}),
			mustMarshal(t, models.FinancialRecord{Type: models.RecordGain, Amount: -50}),
		},
	}, nil).Once()

	totals, err := store.SumFinancialRecords(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1500), totals[models.RecordIncome])
	assert.Equal(t, int64(300), totals[models.RecordExpense])
	assert.Equal(t, int64(-50), totals[models.RecordGain])
	client.AssertExpectations(t)
}
