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

// stampLedgerEntry fills in ids, sort keys and timestamps the caller left empty.
func stampLedgerEntry(entry *models.LedgerEntry, now time.Time) {
	for i := range entry.Records {
		rec := &entry.Records[i]
		if rec.UserId == "" {
			rec.UserId = entry.UserId
		}
		if rec.Id == "" {
			rec.Id = uuid.New().String()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.RecordKey == "" {
			rec.RecordKey = newSortKey(rec.CreatedAt)
		}
	}

	act := &entry.Activity
	if act.UserId == "" {
		act.UserId = entry.UserId
	}
	if act.Id == "" {
		act.Id = uuid.New().String()
	}
	if act.CreatedAt.IsZero() {
		act.CreatedAt = now
	}
	if act.LogKey == "" {
		act.LogKey = newSortKey(act.CreatedAt)
	}
}

// walletDeltaItem builds the wallet update for a ledger entry. Credits create the
// wallet if it does not exist yet; debits require the balance to cover them.
func (s *Store) walletDeltaItem(entry *models.LedgerEntry, now time.Time) (types.TransactWriteItem, error) {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	update := &types.Update{
		TableName: aws.String(s.Tables.Wallets),
		Key:       stringKey("user_id", entry.UserId),
	}

	if entry.Delta >= 0 {
		update.UpdateExpression = aws.String("SET balance = if_not_exists(balance, :zero) + :amount, version = if_not_exists(version, :zero) + :inc, updated_at = :now, created_at = if_not_exists(created_at, :now)")
		update.ExpressionAttributeValues = map[string]types.AttributeValue{
			":amount": numberValue(entry.Delta),
			":zero":   numberValue(0),
			":inc":    numberValue(1),
			":now":    nowAV,
		}
	} else {
		update.UpdateExpression = aws.String("SET balance = balance - :amount, version = version + :inc, updated_at = :now")
		update.ConditionExpression = aws.String("balance >= :amount")
		update.ExpressionAttributeValues = map[string]types.AttributeValue{
			":amount": numberValue(-entry.Delta),
			":inc":    numberValue(1),
			":now":    nowAV,
		}
	}

	return types.TransactWriteItem{Update: update}, nil
}

// ledgerEntryItems builds the wallet update followed by the record and activity puts.
// The wallet update is always the first item.
func (s *Store) ledgerEntryItems(entry *models.LedgerEntry, now time.Time) ([]types.TransactWriteItem, error) {
	stampLedgerEntry(entry, now)

	walletItem, err := s.walletDeltaItem(entry, now)
	if err != nil {
		return nil, err
	}
	items := []types.TransactWriteItem{walletItem}

	for _, rec := range entry.Records {
		recAV, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal financial record: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.FinancialRecords),
				Item:                recAV,
				ConditionExpression: aws.String("attribute_not_exists(record_key)"),
			},
		})
	}

	actAV, err := attributevalue.MarshalMap(entry.Activity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity log: %w", err)
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.ActivityLogs),
			Item:                actAV,
			ConditionExpression: aws.String("attribute_not_exists(log_key)"),
		},
	})

	return items, nil
}

// ListFinancialRecords retrieves a user's financial records, newest first.
func (s *Store) ListFinancialRecords(ctx context.Context, q storage.RecordQuery) (*storage.Page[models.FinancialRecord], error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.FinancialRecords),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: q.UserID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if q.Type != "" {
		input.FilterExpression = aws.String("#type = :type")
		input.ExpressionAttributeNames = map[string]string{"#type": "type"}
		input.ExpressionAttributeValues[":type"] = &types.AttributeValueMemberS{Value: string(q.Type)}
	}

	return queryPage[models.FinancialRecord](ctx, s.Client, input, q.ListOptions)
}

// ListActivities retrieves a user's activity log, newest first.
func (s *Store) ListActivities(ctx context.Context, q storage.ActivityQuery) (*storage.Page[models.ActivityLog], error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.ActivityLogs),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: q.UserID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if q.ActivityType != "" {
		input.FilterExpression = aws.String("activity_type = :activity_type")
		input.ExpressionAttributeValues[":activity_type"] = &types.AttributeValueMemberS{Value: string(q.ActivityType)}
	}

	return queryPage[models.ActivityLog](ctx, s.Client, input, q.ListOptions)
}

// SumFinancialRecords totals a user's record amounts per type.
func (s *Store) SumFinancialRecords(ctx context.Context, userID string) (map[models.RecordType]int64, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.FinancialRecords),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ProjectionExpression:   aws.String("#type, amount"),
		ExpressionAttributeNames: map[string]string{
			"#type": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
	}

	records, err := queryAll[models.FinancialRecord](ctx, s.Client, input)
	if err != nil {
		return nil, fmt.Errorf("failed to sum financial records: %w", err)
	}

	totals := make(map[models.RecordType]int64)
	for _, rec := range records {
		totals[rec.Type] += rec.Amount
	}
	return totals, nil
}
