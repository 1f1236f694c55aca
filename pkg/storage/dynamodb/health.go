package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Ping checks that the orders table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.Tables.Orders),
	})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", s.Tables.Orders, err)
	}
	return nil
}
