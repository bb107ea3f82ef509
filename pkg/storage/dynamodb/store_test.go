package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/chris/energy-vault/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestStore(client DynamoDBAPI) *Store {
	return New(client, "vaults", "credits", "transactions", "connections")
}

func forTable(name string) interface{} {
	return mock.MatchedBy(func(in *dynamodb.QueryInput) bool { return aws.ToString(in.TableName) == name })
}

func vaultAV(t *testing.T, version int64) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(vaultItem{
		CustomerID:       "cust-1",
		TotalCredits:     "150.5",
		AvailableCredits: "100.5",
		ConsumedCredits:  "50",
		ExpiredCredits:   "0",
		LastUpdated:      issuedAt,
		Version:          version,
	})
	require.NoError(t, err)
	return av
}

func TestLoadLedger(t *testing.T) {
	ctx := context.Background()

	creditAV, _ := attributevalue.MarshalMap(creditItem{
		CustomerID: "cust-1", CreditID: "c1", Amount: "100.5", Source: "solar_generation",
		Status: "active", IssuedAt: issuedAt,
	})
	txAV, _ := attributevalue.MarshalMap(transactionItem{
		CustomerID: "cust-1", TransactionID: "t1", Sequence: 1, Type: "credit", Reason: "issue",
		Amount: "100.5", Timestamp: issuedAt,
	})

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: vaultAV(t, 3)}, nil).Twice()
		mockClient.On("Query", mock.Anything, forTable("credits")).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{creditAV}}, nil).Once()
		mockClient.On("Query", mock.Anything, forTable("transactions")).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txAV}}, nil).Once()

		l, err := newTestStore(mockClient).LoadLedger(ctx, "cust-1")

		require.NoError(t, err)
		assert.Equal(t, int64(3), l.Vault.Version)
		assert.True(t, l.Vault.AvailableCredits.Equal(decimal.RequireFromString("100.5")))
		require.Len(t, l.Credits, 1)
		assert.Equal(t, models.ACTIVE, l.Credits[0].Status)
		assert.True(t, l.Credits[0].Amount.Equal(decimal.RequireFromString("100.5")))
		require.Len(t, l.Transactions, 1)
		assert.Equal(t, models.CREDIT, l.Transactions[0].Type)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unknown Customer", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		l, err := newTestStore(mockClient).LoadLedger(ctx, "cust-9")

		require.NoError(t, err)
		assert.Equal(t, "cust-9", l.Vault.CustomerID)
		assert.Zero(t, l.Vault.Version)
		assert.Empty(t, l.Credits)
		assert.Empty(t, l.Transactions)
	})

	t.Run("Retries When Version Moves", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: vaultAV(t, 1)}, nil).Once()
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: vaultAV(t, 2)}, nil).Times(3)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Times(4)

		l, err := newTestStore(mockClient).LoadLedger(ctx, "cust-1")

		require.NoError(t, err)
		assert.Equal(t, int64(2), l.Vault.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Gives Up After Repeated Changes", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		for v := int64(1); v <= 2*maxLoadAttempts; v++ {
			mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: vaultAV(t, v)}, nil).Once()
		}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		_, err := newTestStore(mockClient).LoadLedger(ctx, "cust-1")

		assert.ErrorIs(t, err, storage.ErrConcurrencyConflict)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := newTestStore(mockClient).LoadLedger(ctx, "cust-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get vault from DynamoDB")
	})

	t.Run("Follows Pagination", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		next := map[string]types.AttributeValue{"customer_id": &types.AttributeValueMemberS{Value: "cust-1"}}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: vaultAV(t, 3)}, nil)
		mockClient.On("Query", mock.Anything, forTable("credits")).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{creditAV}, LastEvaluatedKey: next}, nil).Once()
		mockClient.On("Query", mock.Anything, forTable("credits")).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{creditAV}}, nil).Once()
		mockClient.On("Query", mock.Anything, forTable("transactions")).Return(&dynamodb.QueryOutput{}, nil).Once()

		l, err := newTestStore(mockClient).LoadLedger(ctx, "cust-1")

		require.NoError(t, err)
		assert.Len(t, l.Credits, 2)
		mockClient.AssertExpectations(t)
	})
}

func TestCommitMutation(t *testing.T) {
	ctx := context.Background()
	amount := decimal.RequireFromString("10.25")
	mutation := func(expected int64) *models.Mutation {
		return &models.Mutation{
			CustomerID:      "cust-1",
			ExpectedVersion: expected,
			Vault:           models.EnergyVault{CustomerID: "cust-1", TotalCredits: amount, AvailableCredits: amount, Version: expected + 1},
			PutCredits:      []models.EnergyCredit{{ID: "c1", CustomerID: "cust-1", Amount: amount, Status: models.ACTIVE, IssuedAt: issuedAt}},
			Append:          []models.EnergyTransaction{{ID: "t1", CustomerID: "cust-1", Sequence: expected + 1, Type: models.CREDIT, Amount: amount, Timestamp: issuedAt}},
		}
	}

	t.Run("New Vault", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return len(in.TransactItems) == 3 &&
				aws.ToString(in.TransactItems[0].Put.ConditionExpression) == "attribute_not_exists(customer_id)" &&
				aws.ToString(in.TransactItems[1].Put.TableName) == "credits" &&
				aws.ToString(in.TransactItems[2].Put.ConditionExpression) == "attribute_not_exists(transaction_id)"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := newTestStore(mockClient).CommitMutation(ctx, mutation(0))

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Existing Vault", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			put := in.TransactItems[0].Put
			expected, ok := put.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN)
			var stored vaultItem
			_ = attributevalue.UnmarshalMap(put.Item, &stored)
			return aws.ToString(put.ConditionExpression) == "version = :expected" &&
				ok && expected.Value == "4" &&
				stored.Version == 5 && stored.TotalCredits == "10.25"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := newTestStore(mockClient).CommitMutation(ctx, mutation(4))

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}, {Code: aws.String("None")}},
		})

		err := newTestStore(mockClient).CommitMutation(ctx, mutation(4))

		assert.ErrorIs(t, err, storage.ErrConcurrencyConflict)
	})

	t.Run("Cancelled For Other Reason", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
		})

		err := newTestStore(mockClient).CommitMutation(ctx, mutation(4))

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrConcurrencyConflict)
		assert.Contains(t, err.Error(), "failed to commit mutation")
	})

	t.Run("Too Large", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		m := mutation(1)
		m.PutCredits = make([]models.EnergyCredit, MaxTransactItems)

		err := newTestStore(mockClient).CommitMutation(ctx, m)

		assert.ErrorIs(t, err, ErrMutationTooLarge)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("At Item Limit", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		m := mutation(1)
		m.PutCredits = make([]models.EnergyCredit, MaxTransactItems-1-len(m.Append))
		for i := range m.PutCredits {
			m.PutCredits[i] = models.EnergyCredit{ID: fmt.Sprintf("c%d", i), CustomerID: "cust-1", Amount: decimal.NewFromInt(1), Status: models.CONSUMED}
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return len(in.TransactItems) == MaxTransactItems
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		require.NoError(t, newTestStore(mockClient).CommitMutation(ctx, m))
		mockClient.AssertExpectations(t)
	})
}

func TestListCustomers(t *testing.T) {
	page := func(ids ...string) []map[string]types.AttributeValue {
		var out []map[string]types.AttributeValue
		for _, id := range ids {
			out = append(out, map[string]types.AttributeValue{"customer_id": &types.AttributeValueMemberS{Value: id}})
		}
		return out
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{Items: page("cust-2"), LastEvaluatedKey: page("cust-2")[0]}, nil).Once()
		mockClient.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{Items: page("cust-1")}, nil).Once()

		ids, err := newTestStore(mockClient).ListCustomers(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, []string{"cust-1", "cust-2"}, ids)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newTestStore(mockClient).ListCustomers(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan vaults table")
	})
}

func TestConnections(t *testing.T) {
	ctx := context.Background()

	t.Run("Add", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			return aws.ToString(in.TableName) == "connections"
		})).Return(&dynamodb.PutItemOutput{}, nil)

		assert.NoError(t, newTestStore(mockClient).AddConnection(ctx, "conn-1"))
		mockClient.AssertExpectations(t)
	})

	t.Run("Remove Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		err := newTestStore(mockClient).RemoveConnection(ctx, "conn-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "conn-1")
	})

	t.Run("List", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		items := []map[string]types.AttributeValue{
			{"connection_id": &types.AttributeValueMemberS{Value: "conn-1"}},
			{"connection_id": &types.AttributeValueMemberS{Value: "conn-2"}},
		}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: items}, nil)

		ids, err := newTestStore(mockClient).GetAllConnections(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []string{"conn-1", "conn-2"}, ids)
	})
}
