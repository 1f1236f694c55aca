package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/store-payments/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Users:                "users",
	Wallets:              "wallets",
	Stores:               "stores",
	Products:             "products",
	Orders:               "orders",
	FinancialRecords:     "financial_records",
	ActivityLogs:         "activity_logs",
	Investments:          "investments",
	TransactionHistories: "transaction_histories",
	ChatbotHistories:     "chatbot_histories",
}

func newTestStore() (*Store, *mocks.DynamoDBAPI) {
	client := new(mocks.DynamoDBAPI)
	return New(client, testTables), client
}

func mustMarshal(t *testing.T, v any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return av
}

// cancelled builds a TransactionCanceledException whose reasons mark the given
// item indexes as failed conditions.
func cancelled(items int, failedAt ...int) error {
	reasons := make([]types.CancellationReason, items)
	for i := range reasons {
		reasons[i].Code = aws.String("None")
	}
	for _, i := range failedAt {
		reasons[i].Code = aws.String(conditionalCheckFailed)
	}
	return &types.TransactionCanceledException{
		Message:             aws.String("Transaction cancelled"),
		CancellationReasons: reasons,
	}
}
