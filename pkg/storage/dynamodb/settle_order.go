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
)

// SettleOrder performs the terminal transition of an order in a single transaction.
// The first item moves the order out of pending and is conditioned on the stored
// status, so every other item (wallet credit, ledger records, restock) commits
// exactly once no matter how many times the same signal arrives.
func (s *Store) SettleOrder(ctx context.Context, st *models.Settlement) (bool, error) {
	if !st.Status.Terminal() {
		return false, fmt.Errorf("cannot settle order %s to non-terminal status %q", st.Order.Id, st.Status)
	}

	now := st.SettledAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return false, fmt.Errorf("failed to marshal timestamp for settlement: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Move the order out of pending.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Orders),
				Key:                 stringKey("id", st.Order.Id),
				UpdateExpression:    aws.String("SET payment_status = :target, gateway_status = :gateway_status, updated_at = :now, settled_at = :now"),
				ConditionExpression: aws.String("payment_status = :pending"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":target":         &types.AttributeValueMemberS{Value: string(st.Status)},
					":pending":        &types.AttributeValueMemberS{Value: string(models.PaymentPending)},
					":gateway_status": &types.AttributeValueMemberS{Value: st.GatewayStatus},
					":now":            nowAV,
				},
			},
		},
	}

	switch st.Status {
	case models.PaymentPaid:
		if st.Ledger != nil {
			// Operation 2..n: Credit the owner's wallet and append the ledger records.
			ledgerItems, err := s.ledgerEntryItems(st.Ledger, now)
			if err != nil {
				return false, err
			}
			items = append(items, ledgerItems...)
		}
	case models.PaymentFailed:
		// Operation 2..n: Return reserved units to stock.
		for _, li := range st.Restock {
			items = append(items, types.TransactWriteItem{
				Update: &types.Update{
					TableName:           aws.String(s.Tables.Products),
					Key:                 stringKey("id", li.ProductId),
					UpdateExpression:    aws.String("SET stock = stock + :qty, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":qty": numberValue(li.Quantity),
						":now": nowAV,
					},
				},
			})
		}
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failed, ok := cancelledConditions(err); ok && len(failed) > 0 && failed[0] {
			// The order already reached a terminal status.
			return false, nil
		}
		return false, fmt.Errorf("failed to execute settlement transaction: %w", err)
	}

	return true, nil
}
