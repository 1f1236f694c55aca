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

// CreateWallet creates a new wallet record in DynamoDB.
func (s *Store) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	now := time.Now().UTC()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	walletAV, err := attributevalue.MarshalMap(wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Wallets),
		Item:                walletAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"), // Prevent overwriting existing wallets.
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, fmt.Errorf("wallet for user ID %s: %w", wallet.UserId, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create wallet in DynamoDB: %w", err)
	}

	return wallet, nil
}

// GetWallet retrieves a user's wallet from DynamoDB by their user ID.
func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.getItem(ctx, s.Tables.Wallets, stringKey("user_id", userID), &wallet); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// ApplyLedgerEntry adjusts the wallet and appends the entry's records and activity atomically.
func (s *Store) ApplyLedgerEntry(ctx context.Context, entry *models.LedgerEntry) (*models.Wallet, error) {
	items, err := s.ledgerEntryItems(entry, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.transactLedger(ctx, items); err != nil {
		return nil, err
	}

	// Get the updated wallet to return.
	return s.GetWallet(ctx, entry.UserId)
}

// transactLedger executes items whose first element is a wallet delta, mapping a
// failed balance condition to ErrInsufficientFunds.
func (s *Store) transactLedger(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failed, ok := cancelledConditions(err); ok && len(failed) > 0 && failed[0] {
			return storage.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to execute ledger transaction: %w", err)
	}
	return nil
}
