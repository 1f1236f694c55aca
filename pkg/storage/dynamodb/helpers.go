package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/google/uuid"
)

// keyTimeLayout is a fixed-width UTC layout so that sort keys order lexically by time.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

const conditionalCheckFailed = "ConditionalCheckFailed"

// newSortKey builds a unique, time-ordered sort key.
func newSortKey(t time.Time) string {
	return t.UTC().Format(keyTimeLayout) + "#" + uuid.New().String()
}

// timeKeyValue formats t for time-ordered index attributes such as created_at.
func timeKeyValue(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(keyTimeLayout)}
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func numberValue(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", n)}
}

// cancelledConditions returns, per transaction item, whether it was cancelled by
// a failed condition. ok is false if err is not a TransactionCanceledException.
func cancelledConditions(err error) (failed []bool, ok bool) {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil, false
	}
	failed = make([]bool, len(tce.CancellationReasons))
	for i, reason := range tce.CancellationReasons {
		failed[i] = aws.ToString(reason.Code) == conditionalCheckFailed
	}
	return failed, true
}

func isConditionalCheckFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

// encodeCursor turns a LastEvaluatedKey into an opaque string. All keys in this
// schema are string attributes.
func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	var plain map[string]string
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return "", fmt.Errorf("failed to unmarshal pagination key: %w", err)
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("failed to encode pagination key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, storage.ErrInvalidCursor
	}
	var plain map[string]string
	if err := json.Unmarshal(raw, &plain); err != nil || len(plain) == 0 {
		return nil, storage.ErrInvalidCursor
	}
	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, storage.ErrInvalidCursor
	}
	return key, nil
}

// queryPage runs a query until it has collected one page of matching items.
// Limit is lowered to the remaining page size on every round so that filter
// expressions never leave items behind the returned cursor.
func queryPage[T any](ctx context.Context, client DynamoDBAPI, input *dynamodb.QueryInput, opts storage.ListOptions) (*storage.Page[T], error) {
	startKey, err := decodeCursor(opts.Cursor)
	if err != nil {
		return nil, err
	}
	size := opts.PageSize()
	page := &storage.Page[T]{Items: make([]T, 0, size)}

	for {
		input.ExclusiveStartKey = startKey
		input.Limit = aws.Int32(size - int32(len(page.Items)))

		result, err := client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", aws.ToString(input.TableName), err)
		}

		var items []T
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s items: %w", aws.ToString(input.TableName), err)
		}
		page.Items = append(page.Items, items...)

		startKey = result.LastEvaluatedKey
		if len(startKey) == 0 || int32(len(page.Items)) >= size {
			break
		}
	}

	page.NextCursor, err = encodeCursor(startKey)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// queryAll runs a query to exhaustion.
func queryAll[T any](ctx context.Context, client DynamoDBAPI, input *dynamodb.QueryInput) ([]T, error) {
	var all []T
	for {
		result, err := client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", aws.ToString(input.TableName), err)
		}

		var items []T
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s items: %w", aws.ToString(input.TableName), err)
		}
		all = append(all, items...)

		if len(result.LastEvaluatedKey) == 0 {
			return all, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// getItem fetches one item by key into out. It returns storage.ErrNotFound when absent.
func (s *Store) getItem(ctx context.Context, table string, key map[string]types.AttributeValue, out any) error {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get item from %s: %w", table, err)
	}
	if result.Item == nil {
		return storage.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from %s: %w", table, err)
	}
	return nil
}
