package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"github.com/google/uuid"
)

// emailGuard is stored in the users table to enforce unique emails.
type emailGuard struct {
	Id     string `dynamodbav:"id"`
	UserId string `dynamodbav:"user_id"`
}

func emailGuardID(email string) string {
	return "EMAIL#" + strings.ToLower(strings.TrimSpace(email))
}

// CreateUser atomically creates the user, its email guard and an empty wallet.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if user.Id == "" {
		user.Id = uuid.New().String()
	}
	user.CreatedAt = now

	userAV, err := attributevalue.MarshalMap(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	guardAV, err := attributevalue.MarshalMap(emailGuard{Id: emailGuardID(user.Email), UserId: user.Id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email guard: %w", err)
	}
	walletAV, err := attributevalue.MarshalMap(models.Wallet{UserId: user.Id, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Users),
					Item:                userAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Users),
					Item:                guardAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Wallets),
					Item:                walletAV,
					ConditionExpression: aws.String("attribute_not_exists(user_id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, ok := cancelledConditions(err); ok {
			for _, f := range failed {
				if f {
					return nil, fmt.Errorf("user with email %s: %w", user.Email, storage.ErrAlreadyExists)
				}
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.getItem(ctx, s.Tables.Users, stringKey("id", userID), &user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail resolves the email guard and then loads the user.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var guard emailGuard
	if err := s.getItem(ctx, s.Tables.Users, stringKey("id", emailGuardID(email)), &guard); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	return s.GetUser(ctx, guard.UserId)
}
